package monitor

import "time"

// Status is the last observed health of the bot's dependencies. Redis is only
// reported when rate limiting uses it, the journal only when it is enabled.
type Status struct {
	Store       bool      `json:"store"`
	Redis       *bool     `json:"redis,omitempty"`
	Journal     *bool     `json:"journal,omitempty"`
	JournalSize int       `json:"journal_size,omitempty"`
	Failures    int       `json:"consecutive_failures"`
	LastCheck   time.Time `json:"last_check"`
}

// Healthy reports whether the Task Store and Redis (when configured) answered.
// A broken journal degrades history but never blocks commands.
func (s Status) Healthy() bool {
	if !s.Store {
		return false
	}
	return s.Redis == nil || *s.Redis
}
