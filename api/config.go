package api

const (
	defaultMaxMessageLength   = 1000
	defaultMaxSessionIDLength = 100
	defaultRecentLimit        = 50
)

// Config is the API server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// MaxMessageLength bounds userMessage, counted in characters.
	MaxMessageLength int

	// MaxSessionIDLength bounds a supplied sessionId, counted in characters.
	MaxSessionIDLength int

	// DefaultRecentLimit is used by /chat/recent when no limit is given.
	DefaultRecentLimit int

	// AllowOrigins is the CORS origin list, "*" for any.
	AllowOrigins string
}

func (c Config) withDefaults() Config {
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = defaultMaxMessageLength
	}
	if c.MaxSessionIDLength <= 0 {
		c.MaxSessionIDLength = defaultMaxSessionIDLength
	}
	if c.DefaultRecentLimit <= 0 {
		c.DefaultRecentLimit = defaultRecentLimit
	}
	if c.AllowOrigins == "" {
		c.AllowOrigins = "*"
	}
	return c
}
