package scheduler

import "time"

// Config controls job timeouts and how often a disabled schedule is re-read.
type Config struct {
	JobTimeout time.Duration
	IdlePoll   time.Duration
}

func DefaultConfig() Config {
	return Config{
		JobTimeout: 5 * time.Minute,
		IdlePoll:   30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.IdlePoll <= 0 {
		c.IdlePoll = defaults.IdlePoll
	}
	return c
}
