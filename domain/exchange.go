package domain

import "time"

// Exchange is a command received from a transport together with the reply delivered for it.
type Exchange struct {
	ID        string    `json:"id"`
	Workspace string    `json:"workspace"`
	User      string    `json:"user"`
	Command   string    `json:"command"`
	Input     string    `json:"input"`
	Reply     string    `json:"reply"`
	Timestamp time.Time `json:"timestamp"`
}
