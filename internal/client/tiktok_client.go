package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/autoasmr/api/internal/config"
	"github.com/autoasmr/api/internal/logger"
	"github.com/autoasmr/api/internal/model"
)

// TikTok publish statuses
const (
	tiktokStatusComplete = "PUBLISH_COMPLETE"
	tiktokStatusFailed   = "FAILED"
)

// titleLimit is the post title limit of the content posting API, in runes.
const titleLimit = 2200

// TikTokClient implements Publisher with the TikTok Content Posting API,
// letting TikTok pull the clip from its hosted URL.
type TikTokClient struct {
	httpClient   *http.Client
	baseURL      string
	accessToken  string
	username     string
	limiter      *rate.Limiter
	pollInterval time.Duration
	pollTimeout  time.Duration
	log          *zap.SugaredLogger
}

type tiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

type tiktokPostInfo struct {
	Title         string `json:"title"`
	PrivacyLevel  string `json:"privacy_level"`
	DisableDuet   bool   `json:"disable_duet"`
	DisableStitch bool   `json:"disable_stitch"`
}

type tiktokSourceInfo struct {
	Source   string `json:"source"`
	VideoURL string `json:"video_url"`
}

type tiktokInitRequest struct {
	PostInfo   tiktokPostInfo   `json:"post_info"`
	SourceInfo tiktokSourceInfo `json:"source_info"`
}

type tiktokInitResponse struct {
	Data struct {
		PublishID string `json:"publish_id"`
	} `json:"data"`
	Error tiktokError `json:"error"`
}

type tiktokStatusResponse struct {
	Data struct {
		Status     string  `json:"status"`
		FailReason string  `json:"fail_reason"`
		PostIDs    []int64 `json:"publicaly_available_post_id"`
	} `json:"data"`
	Error tiktokError `json:"error"`
}

// NewTikTokClient creates a new TikTok publishing client
func NewTikTokClient(cfg *config.TikTokConfig, log *zap.SugaredLogger) *TikTokClient {
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 6
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &TikTokClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		accessToken:  cfg.AccessToken,
		username:     cfg.Username,
		limiter:      rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		pollInterval: interval,
		pollTimeout:  timeout,
		log:          log.With(logger.FieldComponent, "tiktok"),
	}
}

// Publish posts the clip and waits until TikTok reports it public.
func (c *TikTokClient) Publish(ctx context.Context, videoURL, caption string) (*model.PublishResult, error) {
	req := tiktokInitRequest{
		PostInfo: tiktokPostInfo{
			Title:        truncateRunes(caption, titleLimit),
			PrivacyLevel: "PUBLIC_TO_EVERYONE",
		},
		SourceInfo: tiktokSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: videoURL,
		},
	}

	var initResp tiktokInitResponse
	if err := c.post(ctx, "/v2/post/publish/video/init/", req, &initResp); err != nil {
		return nil, err
	}
	if err := initResp.Error.err(); err != nil {
		return nil, err
	}
	publishID := initResp.Data.PublishID
	if publishID == "" {
		return nil, errors.New("tiktok returned no publish id")
	}
	c.log.Infow("Publish initiated", "publish_id", publishID)

	postID, err := c.PollPublishStatus(ctx, publishID, c.pollInterval, c.pollTimeout)
	if err != nil {
		return nil, err
	}

	return &model.PublishResult{
		PublicURL: fmt.Sprintf("https://www.tiktok.com/@%s/video/%d", c.username, postID),
		PublishID: publishID,
		EmbedURL:  fmt.Sprintf("https://www.tiktok.com/embed/v2/%d", postID),
	}, nil
}

// PollPublishStatus polls until the post is public and returns its id
func (c *TikTokClient) PollPublishStatus(ctx context.Context, publishID string, interval, maxWait time.Duration) (int64, error) {
	deadline := time.Now().Add(maxWait)
	attempt := 0

	for time.Now().Before(deadline) {
		attempt++
		var resp tiktokStatusResponse
		if err := c.post(ctx, "/v2/post/publish/status/fetch/", map[string]string{"publish_id": publishID}, &resp); err != nil {
			return 0, err
		}
		if err := resp.Error.err(); err != nil {
			return 0, err
		}

		c.log.Debugw("Polled publish status", "attempt", attempt, "publish_id", publishID, logger.FieldStatus, resp.Data.Status)

		switch resp.Data.Status {
		case tiktokStatusComplete:
			if len(resp.Data.PostIDs) == 0 {
				return 0, errors.New("tiktok publish completed without a public post id")
			}
			return resp.Data.PostIDs[0], nil
		case tiktokStatusFailed:
			return 0, errors.Newf("tiktok publish failed: %s", resp.Data.FailReason)
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(interval):
		}
	}

	return 0, errors.Newf("tiktok publish timed out after %v", maxWait)
}

func (c *TikTokClient) IsConfigured() bool {
	return c.accessToken != ""
}

// post sends a rate-limited POST request with JSON body
func (c *TikTokClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "tiktok rate limiter")
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("TikTok request failed", "endpoint", endpoint, logger.FieldError, err)
		return errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("tiktok API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	return nil
}

func (e tiktokError) err() error {
	if e.Code == "" || e.Code == "ok" {
		return nil
	}
	return errors.Newf("tiktok API error %s: %s", e.Code, e.Message)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
