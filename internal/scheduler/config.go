package scheduler

import (
	"time"
)

// Config controls sweep cadence and per-job timeouts.
type Config struct {
	RunInterval      time.Duration
	MinSweepInterval time.Duration
	JobTimeout       time.Duration
	EnabledJobs      []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:      time.Hour,
		MinSweepInterval: 10 * time.Minute,
		JobTimeout:       5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.MinSweepInterval <= 0 {
		c.MinSweepInterval = defaults.MinSweepInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

func ProvideConfig() Config {
	return DefaultConfig()
}
