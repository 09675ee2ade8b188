package model

import "time"

// ScheduleEntry is the preferred publish time for one weekday
type ScheduleEntry struct {
	Time  string `json:"time"`
	Range string `json:"range"`
	Label string `json:"label,omitempty"`
}

// NextSlot is the next optimal publish instant
type NextSlot struct {
	At           time.Time
	Weekday      string
	WeekdayLabel string
	TimeRange    string
}

// NextUploadSummary is the next slot as reported when scheduling is enabled
type NextUploadSummary struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Weekday string `json:"weekday"`
	Label   string `json:"label"`
	Range   string `json:"range"`
}

// NextUploadStatus is the next slot as reported by the status view
type NextUploadStatus struct {
	Datetime   string `json:"datetime"`
	Weekday    string `json:"weekday"`
	Label      string `json:"label"`
	TimeRange  string `json:"time_range"`
	HoursUntil int    `json:"hours_until"`
}

// EnableScheduleResponse represents the response when daily scheduling is enabled
type EnableScheduleResponse struct {
	Success       bool                     `json:"success"`
	Message       string                   `json:"message"`
	NextUpload    NextUploadSummary        `json:"next_upload"`
	ScheduleTable map[string]ScheduleEntry `json:"schedule_table"`
}

// ScheduleStatusResponse is the read-only scheduler view
type ScheduleStatusResponse struct {
	CurrentTime           string                   `json:"current_time"`
	Enabled               bool                     `json:"enabled"`
	ScheduledTriggerCount int                      `json:"scheduled_trigger_count"`
	NextUpload            NextUploadStatus         `json:"next_upload"`
	ScheduleTable         map[string]ScheduleEntry `json:"schedule_table"`
}
