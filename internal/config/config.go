package config

import "os"

const (
	// DefaultAPIURL is where the chatbot backend listens in development.
	DefaultAPIURL = "http://localhost:5000"

	// DefaultDBPath is the local SQLite file holding the saved session.
	DefaultDBPath = "shopchat.db"
)

// Config holds application configuration
type Config struct {
	APIURL string // Base URL of the chatbot backend REST API
	DBPath string // Path to the local session database
	Debug  bool   // Enable debug logging
}

// FromEnv fills unset fields from the environment and defaults.
// Flags parsed by the caller take precedence.
func (c *Config) FromEnv() {
	if c.APIURL == "" {
		c.APIURL = os.Getenv("SHOPCHAT_API_URL")
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
}
