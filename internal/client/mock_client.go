package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/autoasmr/api/internal/model"
	"github.com/autoasmr/api/internal/synth"
)

// MockVideoGenerator fabricates a hosted clip. It never fails.
type MockVideoGenerator struct {
	rand synth.Rand
	now  func() time.Time
}

// NewMockVideoGenerator draws durations from r; nil uses a random source.
func NewMockVideoGenerator(r synth.Rand) *MockVideoGenerator {
	return &MockVideoGenerator{rand: synth.Locked(r), now: time.Now}
}

func (g *MockVideoGenerator) Generate(ctx context.Context, prompt string) (*model.VideoResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &model.VideoResult{
		VideoURL:        fmt.Sprintf("https://storage.googleapis.com/asmr_videos/video_%s.mp4", uuid.NewString()),
		DurationSeconds: 8 + g.rand.IntN(8),
		Format:          "mp4",
		Resolution:      "1080x1920",
		AudioIncluded:   true,
		GeneratedAt:     g.now(),
	}, nil
}

func (g *MockVideoGenerator) IsConfigured() bool { return false }

// MockPublisher fabricates publish identifiers. It never fails.
type MockPublisher struct {
	rand synth.Rand
}

func NewMockPublisher(r synth.Rand) *MockPublisher {
	return &MockPublisher{rand: synth.Locked(r)}
}

func (p *MockPublisher) Publish(ctx context.Context, videoURL, caption string) (*model.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	videoID := 100000000 + p.rand.IntN(900000000)
	return &model.PublishResult{
		PublicURL: fmt.Sprintf("https://vm.tiktok.com/%d", videoID),
		PublishID: "tiktok_" + uuid.NewString(),
		EmbedURL:  fmt.Sprintf("https://www.tiktok.com/embed/v2/%d", videoID),
	}, nil
}

func (p *MockPublisher) IsConfigured() bool { return false }
