package model

import "time"

// ActivityEntry is one immutable line of the activity trail.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id"`
	Message   string    `json:"message"`
	Level     LogLevel  `json:"level"`
}

// LogListResponse lists recent activity entries, newest first
type LogListResponse struct {
	Logs  []ActivityEntry `json:"logs"`
	Count int             `json:"count"`
}
