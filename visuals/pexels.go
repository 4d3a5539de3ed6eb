package visuals

import (
	"context"

	"github.com/Abalmaz/course-creator/pexels"
)

// pexelsProvider adapts the Pexels video search client to the
// SearchProvider interface.
type pexelsProvider struct {
	client *pexels.Client
}

func NewPexelsProvider(client *pexels.Client) SearchProvider {
	return &pexelsProvider{client: client}
}

func (p *pexelsProvider) SearchPage(ctx context.Context, query string, page, perPage int) ([][]Candidate, error) {
	resp, err := p.client.SearchVideos(ctx, pexels.SearchParams{
		Query:   query,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	items := make([][]Candidate, 0, len(resp.Videos))
	for _, video := range resp.Videos {
		files := make([]Candidate, 0, len(video.VideoFiles))
		for _, f := range video.VideoFiles {
			files = append(files, Candidate{Link: f.Link, Width: f.Width, FileType: f.FileType})
		}
		items = append(items, files)
	}
	return items, nil
}
