package config

import "time"

const (
	DefaultHTTPPort        = "3040"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRefreshInterval = 5 * time.Minute
	DefaultPGMaxConns      = 5
	DefaultPGMinConns      = 1
)
