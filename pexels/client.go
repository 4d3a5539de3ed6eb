// Package pexels is a minimal client for the Pexels video search API.
package pexels

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.pexels.com/videos"

// ErrNotConfigured is returned by NewClient when no API key is available.
var ErrNotConfigured = errors.New("pexels: PEXELS_API_KEY not set")

type Client struct {
	http *resty.Client
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetHeader("Authorization", apiKey).
			SetTimeout(10 * time.Second),
	}, nil
}

type SearchParams struct {
	Query   string
	Page    int
	PerPage int
	// Orientation defaults to landscape, matching the 16:9 scene videos.
	Orientation string
}

// VideoFile is one encoding of a video result.
type VideoFile struct {
	ID       int64  `json:"id"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Link     string `json:"link"`
}

type Video struct {
	ID         int64       `json:"id"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Duration   int         `json:"duration"`
	URL        string      `json:"url"`
	VideoFiles []VideoFile `json:"video_files"`
}

type SearchResponse struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
	Videos       []Video `json:"videos"`
}

// SearchVideos runs one page of a video search.
func (c *Client) SearchVideos(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	if params.Orientation == "" {
		params.Orientation = "landscape"
	}

	var out SearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":       params.Query,
			"page":        strconv.Itoa(params.Page),
			"per_page":    strconv.Itoa(params.PerPage),
			"orientation": params.Orientation,
		}).
		SetResult(&out).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("pexels search for %q: %w", params.Query, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pexels search for %q: status %d: %s", params.Query, resp.StatusCode(), resp.String())
	}
	return &out, nil
}
