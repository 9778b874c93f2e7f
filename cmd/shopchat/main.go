package main

import (
	"flag"
	"fmt"
	"os"

	"ShopChat/internal/chatbot"
	"ShopChat/internal/config"
)

func main() {
	var cfg config.Config

	flag.StringVar(&cfg.APIURL, "api-url", "", "Backend API base URL (default $SHOPCHAT_API_URL or "+config.DefaultAPIURL+")")
	flag.StringVar(&cfg.DBPath, "db", "", "Path to the local session database (default "+config.DefaultDBPath+")")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	flag.Parse()
	cfg.FromEnv()

	bot, err := chatbot.NewChatBot(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize chatbot: %v\n", err)
		os.Exit(1)
	}

	if err := bot.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
