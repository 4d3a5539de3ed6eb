package visuals

import (
	"context"
	"log"
)

// Candidate is one downloadable encoding of a search result item.
type Candidate struct {
	Link     string
	Width    int
	FileType string
}

// SearchProvider pages through a stock-footage search. Each element of the
// returned slice is one result item, listed as its available file variants.
type SearchProvider interface {
	SearchPage(ctx context.Context, query string, page, perPage int) ([][]Candidate, error)
}

// Evaluator scores a candidate visual against scene text.
type Evaluator interface {
	Evaluate(ctx context.Context, visualURL, sceneText string) Evaluation
}

// Limits bound the paginated search and the evaluation budget.
type Limits struct {
	PerPage        int
	MaxPages       int
	MaxEvaluations int
}

func DefaultLimits() Limits {
	return Limits{PerPage: 5, MaxPages: 3, MaxEvaluations: 15}
}

// acceptThreshold is the minimum overall score a candidate must reach.
const acceptThreshold = 0.5

// Selector finds the best unused background video for a scene.
type Selector struct {
	provider SearchProvider
	scorer   Evaluator
}

func NewSelector(provider SearchProvider, scorer Evaluator) *Selector {
	return &Selector{provider: provider, scorer: scorer}
}

// SelectBest pages through the provider, scores previously-unused candidates
// and returns the highest-scoring safe candidate at or above the acceptance
// threshold, or ok=false when none qualifies. Ties keep the first-seen
// candidate, scanned in page order then provider order within a page. Paging
// stops on an empty page or a provider error, and the whole scan stops once
// limits.MaxEvaluations candidates have been scored, even mid-page.
//
// SelectBest never mutates used; the caller records the returned reference
// before selecting for the next scene of the same module.
func (s *Selector) SelectBest(ctx context.Context, query, sceneText string, used map[string]struct{}, limits Limits) (string, bool) {
	if limits.PerPage <= 0 || limits.MaxPages <= 0 || limits.MaxEvaluations <= 0 {
		limits = DefaultLimits()
	}

	var (
		best      string
		bestScore float64
		evaluated int
	)

	for page := 1; page <= limits.MaxPages; page++ {
		items, err := s.provider.SearchPage(ctx, query, page, limits.PerPage)
		if err != nil {
			log.Printf("Visual search failed for %q page %d: %v", query, page, err)
			break
		}
		if len(items) == 0 {
			break
		}

		for _, files := range items {
			link := bestFile(files)
			if link == "" {
				continue
			}
			if _, taken := used[link]; taken {
				continue
			}

			eval := s.scorer.Evaluate(ctx, link, sceneText)
			evaluated++

			if eval.Safe() && eval.OverallScore >= acceptThreshold && eval.OverallScore > bestScore {
				best = link
				bestScore = eval.OverallScore
			}

			if evaluated >= limits.MaxEvaluations {
				return best, best != ""
			}
		}
	}

	return best, best != ""
}

// bestFile picks the preferred encoding of one result item: mp4 only, the
// widest variant, first-seen kept on a width tie.
func bestFile(files []Candidate) string {
	var best *Candidate
	for i := range files {
		f := &files[i]
		if f.Link == "" || (f.FileType != "" && f.FileType != "video/mp4") {
			continue
		}
		if best == nil || f.Width > best.Width {
			best = f
		}
	}
	if best == nil {
		return ""
	}
	return best.Link
}
