package model

import (
	"strings"
	"time"
)

// Job is one request to produce and publish a short video.
type Job struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Prompt          string     `json:"prompt"`
	ScheduleTime    string     `json:"schedule_time"`
	Status          JobStatus  `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	LastRun         *time.Time `json:"last_run"`
	VideoURL        *string    `json:"video_url"`
	TikTokURL       *string    `json:"tiktok_url"`
	ErrorMessage    *string    `json:"error_message"`
	Caption         *string    `json:"caption,omitempty"`
	DurationSeconds int        `json:"duration_seconds,omitempty"`
	PublishID       string     `json:"publish_id,omitempty"`
	EmbedURL        string     `json:"embed_url,omitempty"`
}

// Clone returns a deep copy so callers never share pointer fields.
func (j *Job) Clone() *Job {
	c := *j
	c.LastRun = cloneTime(j.LastRun)
	c.VideoURL = cloneString(j.VideoURL)
	c.TikTokURL = cloneString(j.TikTokURL)
	c.ErrorMessage = cloneString(j.ErrorMessage)
	c.Caption = cloneString(j.Caption)
	return &c
}

// IsAutoPrompt reports whether the prompt must be synthesized at run time.
func (j *Job) IsAutoPrompt() bool {
	return j.Prompt == "" || strings.EqualFold(j.Prompt, PromptAuto)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CreateJobRequest represents the request to create an explicit job
type CreateJobRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Prompt       string `json:"prompt" validate:"max=4000"`
	ScheduleTime string `json:"schedule_time" validate:"required,max=64"`
}

// CreateJobResponse represents the response when creating an explicit job
type CreateJobResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
}

// CreateAutoJobResponse represents the response when an auto job is started
type CreateAutoJobResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// CreateBatchRequest represents the request to create several auto jobs
type CreateBatchRequest struct {
	Count *int `json:"count" validate:"omitempty,min=1,max=20"`
}

// CreateBatchResponse represents the response when a batch is started
type CreateBatchResponse struct {
	Success     bool     `json:"success"`
	CreatedJobs []string `json:"created_jobs"`
	Count       int      `json:"count"`
	Message     string   `json:"message"`
}

// JobStatusResponse is the read-only status view of a job
type JobStatusResponse struct {
	ID           string     `json:"id"`
	Status       JobStatus  `json:"status"`
	LastRun      *time.Time `json:"last_run"`
	VideoURL     *string    `json:"video_url"`
	TikTokURL    *string    `json:"tiktok_url"`
	ErrorMessage *string    `json:"error_message"`
}

// JobDetailResponse is a job together with its own activity trail
type JobDetailResponse struct {
	Job  *Job            `json:"job"`
	Logs []ActivityEntry `json:"logs"`
}

// JobListResponse lists every stored job
type JobListResponse struct {
	Jobs  []*Job `json:"jobs"`
	Count int    `json:"count"`
}

// SuccessResponse is the bare acknowledgement envelope
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
