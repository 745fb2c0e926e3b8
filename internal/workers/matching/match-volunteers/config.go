// internal/workers/matching/match-volunteers/config.go
package matchvolunteers

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// MaxCandidates caps how many eligible volunteers a job may load; more
	// fails the job rather than matching a truncated list.
	MaxCandidates int
	// StrictCodes fails the job when a project carries a region code the
	// region table does not know.
	StrictCodes bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		CacheTTL:      5 * time.Minute,
		MaxCandidates: 50000,
	}
}
