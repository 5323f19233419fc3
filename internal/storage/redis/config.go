package redis

import "time"

// Config holds Redis connection settings
type Config struct {
	// URL is a redis:// or rediss:// URL; the path selects the database
	URL string

	PoolSize     int
	MinIdleConns int

	// DialTimeout bounds each new connection, PingTimeout the startup check
	DialTimeout time.Duration
	PingTimeout time.Duration
}

// DefaultConfig returns settings for a local Redis
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379/0",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		PingTimeout:  5 * time.Second,
	}
}
