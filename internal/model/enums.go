package model

// Job status
type JobStatus string

const (
	JobStatusScheduled      JobStatus = "scheduled"
	JobStatusRunning        JobStatus = "running"
	JobStatusCompleted      JobStatus = "completed"
	JobStatusFailed         JobStatus = "failed"
	JobStatusPartialSuccess JobStatus = "partial_success"
)

// IsTerminal reports whether the status ends a run.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusPartialSuccess:
		return true
	}
	return false
}

// Activity log levels
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelError   LogLevel = "error"
)

// Prompt and schedule sentinels
const (
	PromptAuto = "auto"

	ScheduleManual    = "manual"
	ScheduleDailyAuto = "daily_auto"
)

// RunMode selects which part of the pipeline a dispatched run executes.
type RunMode string

const (
	RunModeFull        RunMode = "full"
	RunModePublishOnly RunMode = "publish_only"
)
