package client

import (
	"context"
	"io"

	"github.com/autoasmr/api/internal/model"
)

// VideoGenerator turns a creative prompt into a hosted vertical clip.
// Implementations do not retry; a returned error ends the run.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string) (*model.VideoResult, error)
	IsConfigured() bool
}

// Publisher distributes a hosted clip with its caption.
type Publisher interface {
	Publish(ctx context.Context, videoURL, caption string) (*model.PublishResult, error)
	IsConfigured() bool
}

// StorageClient defines the object storage operations used to mirror
// generated clips to a public bucket.
type StorageClient interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	GetPublicURL(key string) string
	IsConfigured() bool
}
