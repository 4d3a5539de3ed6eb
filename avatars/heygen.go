// Package avatars integrates the HeyGen avatar provider: registering photo
// avatars, checking training, and generating avatar presenter videos for
// scenes. The training workflow itself is provider-side; these are
// pass-through calls.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.heygen.com/v1"

// ErrNotConfigured is returned by NewHeyGenClient when no API key is set.
var ErrNotConfigured = errors.New("avatars: HEYGEN_API_KEY not set")

type HeyGenClient struct {
	http *resty.Client
}

func NewHeyGenClient(apiKey string) (*HeyGenClient, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &HeyGenClient{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetHeader("X-Api-Key", apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
	}, nil
}

type heygenEnvelope struct {
	Data map[string]any `json:"data"`
	Err  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *heygenEnvelope) str(key string) string {
	if e.Data == nil {
		return ""
	}
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

func (c *HeyGenClient) post(ctx context.Context, path string, body any) (*heygenEnvelope, error) {
	var out heygenEnvelope
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(path)
	if err != nil {
		return nil, fmt.Errorf("heygen %s: %w", path, err)
	}
	if resp.IsError() || out.Err != nil {
		msg := resp.String()
		if out.Err != nil {
			msg = out.Err.Message
		}
		return nil, fmt.Errorf("heygen %s: status %d: %s", path, resp.StatusCode(), msg)
	}
	return &out, nil
}

func (c *HeyGenClient) get(ctx context.Context, path string) (*heygenEnvelope, error) {
	var out heygenEnvelope
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(path)
	if err != nil {
		return nil, fmt.Errorf("heygen %s: %w", path, err)
	}
	if resp.IsError() || out.Err != nil {
		msg := resp.String()
		if out.Err != nil {
			msg = out.Err.Message
		}
		return nil, fmt.Errorf("heygen %s: status %d: %s", path, resp.StatusCode(), msg)
	}
	return &out, nil
}

// CreatePhotoAvatar registers a photo avatar from an image URL and returns
// the provider-side avatar id.
func (c *HeyGenClient) CreatePhotoAvatar(ctx context.Context, imageURL, name string) (string, error) {
	out, err := c.post(ctx, "/photo_avatar/photo/generate", map[string]string{
		"image_url": imageURL,
		"name":      name,
	})
	if err != nil {
		return "", err
	}
	id := out.str("avatar_id")
	if id == "" {
		id = out.str("id")
	}
	if id == "" {
		return "", fmt.Errorf("heygen returned no avatar id")
	}
	return id, nil
}

// TrainingStatus reports the state of an avatar training task.
func (c *HeyGenClient) TrainingStatus(ctx context.Context, taskID string) (string, error) {
	out, err := c.get(ctx, "/photo_avatar/train/status/"+taskID)
	if err != nil {
		return "", err
	}
	return out.str("status"), nil
}

// CreateAvatarVideo requests an avatar presenter video for the given script
// and returns the provider-side video id for status polling.
func (c *HeyGenClient) CreateAvatarVideo(ctx context.Context, avatarID, voiceID, script string) (string, error) {
	out, err := c.post(ctx, "/video/generate", map[string]string{
		"avatar_id":        avatarID,
		"voice_id":         voiceID,
		"input_text":       script,
		"background_color": "#ffffff",
	})
	if err != nil {
		return "", err
	}
	id := out.str("video_id")
	if id == "" {
		return "", fmt.Errorf("heygen returned no video id")
	}
	return id, nil
}

// VideoStatus returns the status of an avatar video and, once completed,
// its download URL.
func (c *HeyGenClient) VideoStatus(ctx context.Context, videoID string) (status, videoURL string, err error) {
	out, err := c.get(ctx, "/video/"+videoID)
	if err != nil {
		return "", "", err
	}
	return out.str("status"), out.str("video_url"), nil
}
