// internal/workers/data-access/query-postgresql/config.go
package querypostgresql

import "time"

type Config struct {
	Timeout time.Duration
	// MaxRows clamps the limit a job may ask for on list queries.
	MaxRows int
	// SlowQuery is the execution time above which a query is logged as slow.
	SlowQuery time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		MaxRows:   1000,
		SlowQuery: 2 * time.Second,
	}
}
