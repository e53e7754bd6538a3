package domain

import "time"

// Task is one entry of a user's list inside a workspace.
type Task struct {
	ID        int64     `json:"id"`
	Workspace string    `json:"workspace"`
	Owner     string    `json:"owner"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// IsOpen reports whether the task still counts towards the owner's incomplete list.
func (t *Task) IsOpen() bool {
	return t != nil && !t.Completed
}

// TaskNames extracts names preserving order.
func TaskNames(tasks []Task) []string {
	names := make([]string, 0, len(tasks))
	for _, t := range tasks {
		names = append(names, t.Name)
	}
	return names
}
