package api

import (
	"encoding/json"
)

// StatusSuccess is the envelope status the backend sets on success.
const StatusSuccess = "success"

// Envelope is the common response shape of every backend endpoint:
// {"status": ..., "message": ..., "data": ...}.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// FlexString decodes a JSON value that may arrive as either a string or a
// number. The backend stores user and product ids as integers while the
// client treats them as opaque strings.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Product is a catalog record returned by the assistant or the product
// browse endpoint. Read-only on the client.
type Product struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
}

// LoginData is the payload of a successful /login response.
type LoginData struct {
	Token    string     `json:"token"`
	UserID   FlexString `json:"user_id"`
	Username string     `json:"username"`
}

// ChatData is the payload of a /chat response.
type ChatData struct {
	Products []Product `json:"products"`
}

// ChatReply is the assistant's answer to one user message.
type ChatReply struct {
	Message  string
	Products []Product
}

// HistoryRecord is one server-persisted conversation turn.
type HistoryRecord struct {
	Message       string `json:"message"`
	IsUserMessage bool   `json:"is_user_message"`
	Timestamp     string `json:"timestamp"`
}

type historyData struct {
	History []HistoryRecord `json:"history"`
}

type productsData []Product

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type historyEntryRequest struct {
	UserID        string `json:"user_id"`
	Message       string `json:"message"`
	IsUserMessage bool   `json:"is_user_message"`
	Timestamp     string `json:"timestamp"`
}

// ProductQuery holds optional filters for the product browse endpoint.
type ProductQuery struct {
	Search   string
	Category string
	MinPrice string
	MaxPrice string
}

func (q ProductQuery) values() map[string]string {
	v := map[string]string{}
	if q.Search != "" {
		v["search"] = q.Search
	}
	if q.Category != "" {
		v["category"] = q.Category
	}
	if q.MinPrice != "" {
		v["min_price"] = q.MinPrice
	}
	if q.MaxPrice != "" {
		v["max_price"] = q.MaxPrice
	}
	return v
}
