package domain

import (
	"strconv"
	"strings"
	"time"
)

// SettingRetention holds the per-workspace age after which tasks are purged.
const SettingRetention = "retention"

// Setting is a workspace-level key/value pair.
type Setting struct {
	Workspace string    `json:"workspace"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseRetention accepts Go durations plus a day suffix ("30d"). "off", "none" and "0"
// disable retention and yield zero.
func ParseRetention(raw string) (time.Duration, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return 0, NewError(ErrCodeInvalid, "Please provide a retention like 30d or 12h!")
	case "off", "none", "0":
		return 0, nil
	}
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, NewError(ErrCodeInvalid, "Invalid retention: "+raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, NewError(ErrCodeInvalid, "Invalid retention: "+raw)
	}
	return d, nil
}

// FormatRetention renders a retention the way ParseRetention reads it.
func FormatRetention(d time.Duration) string {
	if d <= 0 {
		return "off"
	}
	day := 24 * time.Hour
	if d%day == 0 {
		return strconv.Itoa(int(d/day)) + "d"
	}
	return d.String()
}
