// Package render turns product records into text cards for the terminal.
package render

import (
	"fmt"
	"strings"

	"ShopChat/internal/api"
)

const descriptionLimit = 100

// Products renders one card per product, preserving input order. Empty or
// nil input renders nothing.
func Products(products []api.Product) string {
	if len(products) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range products {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "┌ %s\n", p.Name)
		fmt.Fprintf(&b, "│ Category: %s\n", p.Category)
		fmt.Fprintf(&b, "│ Price: $%.2f\n", p.Price)
		if p.Stock > 0 {
			fmt.Fprintf(&b, "│ Stock: %d\n", p.Stock)
		} else {
			b.WriteString("│ Stock: Out of stock\n")
		}
		fmt.Fprintf(&b, "└ %s\n", truncate(p.Description, descriptionLimit))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
