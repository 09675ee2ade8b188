package model

import "time"

// VideoResult is what a video generation collaborator returns
type VideoResult struct {
	VideoURL        string    `json:"video_url"`
	DurationSeconds int       `json:"duration"`
	Format          string    `json:"format"`
	Resolution      string    `json:"resolution"`
	AudioIncluded   bool      `json:"audio_included"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// PublishResult is what a publish collaborator returns
type PublishResult struct {
	PublicURL string `json:"share_url"`
	PublishID string `json:"publish_id"`
	EmbedURL  string `json:"embed_url"`
}
