package model

import "time"

// Shared defaults used by both the shell and the stub binaries.
const (
	DefaultAPIURL         = "http://localhost:8000/api/v1"
	DefaultStubAddr       = "127.0.0.1:8000"
	DefaultPageSize       = 10
	DefaultToastTTL       = 4 * time.Second
	DefaultRequestTimeout = 15 * time.Second
	DefaultStartPath      = "/dashboard"
	DefaultUpcomingDays   = 30
	MaxPageSize           = 100
)
