// Package renderer is the client for the external render service that
// composites scene videos and concatenates them into module videos.
// Compositing itself happens service-side; this client only submits jobs.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned by NewClient when no service URL is set.
var ErrNotConfigured = errors.New("renderer: RENDER_SERVICE_URL not set")

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Minute),
	}, nil
}

// SceneJob describes one scene composite: the background (or avatar) video,
// the voiceover audio and the on-screen text overlay.
type SceneJob struct {
	SceneID            string `json:"scene_id"`
	BackgroundVideoURL string `json:"background_video_url,omitempty"`
	AvatarVideoURL     string `json:"avatar_video_url,omitempty"`
	VoiceoverAudioPath string `json:"voiceover_audio_path"`
	OnScreenText       string `json:"on_screen_text,omitempty"`
}

type renderResult struct {
	VideoPath string `json:"video_path"`
	Error     string `json:"error,omitempty"`
}

// ComposeScene renders one scene and returns the path of the produced video.
func (c *Client) ComposeScene(ctx context.Context, job SceneJob) (string, error) {
	var out renderResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(job).
		SetResult(&out).
		Post("/render/scene")
	if err != nil {
		return "", fmt.Errorf("render scene %s: %w", job.SceneID, err)
	}
	if resp.IsError() || out.Error != "" {
		return "", fmt.Errorf("render scene %s: status %d: %s%s", job.SceneID, resp.StatusCode(), resp.String(), out.Error)
	}
	if out.VideoPath == "" {
		return "", fmt.Errorf("render scene %s: service returned no video path", job.SceneID)
	}
	return out.VideoPath, nil
}

type moduleJob struct {
	ModuleID    string   `json:"module_id"`
	ScenePaths  []string `json:"scene_paths"`
	OutputTitle string   `json:"output_title,omitempty"`
}

// ConcatenateModule joins rendered scene videos, in the given order, into
// the final module video and returns its path.
func (c *Client) ConcatenateModule(ctx context.Context, moduleID string, scenePaths []string) (string, error) {
	var out renderResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(moduleJob{ModuleID: moduleID, ScenePaths: scenePaths}).
		SetResult(&out).
		Post("/render/module")
	if err != nil {
		return "", fmt.Errorf("render module %s: %w", moduleID, err)
	}
	if resp.IsError() || out.Error != "" {
		return "", fmt.Errorf("render module %s: status %d: %s%s", moduleID, resp.StatusCode(), resp.String(), out.Error)
	}
	if out.VideoPath == "" {
		return "", fmt.Errorf("render module %s: service returned no video path", moduleID)
	}
	return out.VideoPath, nil
}
