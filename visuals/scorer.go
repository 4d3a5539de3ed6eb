// Package visuals scores and selects stock background footage for scenes.
package visuals

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// CheckFailedFlag marks a moderation check that could not be completed.
// It records the failure without treating the candidate as unsafe.
const CheckFailedFlag = "check_failed"

// Judge rates a visual against scene text. The response is expected to be
// JSON but generated output drifts, so it is returned raw.
type Judge interface {
	JudgeVisual(ctx context.Context, visualURL, sceneText string) (string, error)
}

// Moderator runs a safety check over combined visual/scene text.
type Moderator interface {
	Moderate(ctx context.Context, input string) (flagged bool, categories []string, err error)
}

// Evaluation is the multi-criteria result for one candidate visual. It is
// consumed immediately by the selector and never persisted.
type Evaluation struct {
	RelevanceScore    float64  `json:"relevance_score"`
	CoherenceScore    float64  `json:"coherence_score"`
	QualityAssessment string   `json:"quality_assessment"`
	SafetyFlags       []string `json:"safety_flags"`
	OverallScore      float64  `json:"overall_score"`
	Notes             string   `json:"evaluation_notes"`
}

// Safe reports whether the evaluation carries no real safety flag.
// CheckFailedFlag alone does not make a candidate unsafe.
func (e *Evaluation) Safe() bool {
	for _, flag := range e.SafetyFlags {
		if flag != CheckFailedFlag {
			return false
		}
	}
	return true
}

var qualityMultipliers = map[string]float64{
	"Poor":      0.5,
	"Fair":      0.75,
	"Good":      1.0,
	"Excellent": 1.1,
}

const unknownQualityMultiplier = 0.9

// Scorer evaluates candidate visuals through the moderation and vision
// collaborators.
type Scorer struct {
	judge     Judge
	moderator Moderator
}

func NewScorer(judge Judge, moderator Moderator) *Scorer {
	return &Scorer{judge: judge, moderator: moderator}
}

// judgeResponse is the JSON shape the vision judge is asked for.
type judgeResponse struct {
	RelevanceScore     float64 `json:"relevance_score"`
	CoherenceScore     float64 `json:"coherence_score"`
	QualityAssessment  string  `json:"quality_assessment"`
	BriefJustification string  `json:"brief_justification"`
}

// Evaluate scores one candidate visual against the scene text. It never
// returns an error: any collaborator failure degrades to zeroed scores and
// an explanatory note so the selector can keep going.
func (s *Scorer) Evaluate(ctx context.Context, visualURL, sceneText string) Evaluation {
	eval := Evaluation{QualityAssessment: "Unknown"}
	var notes strings.Builder

	flagged, categories, err := s.moderator.Moderate(ctx,
		fmt.Sprintf("Visual content URL: %s\nScene context: %s", visualURL, sceneText))
	switch {
	case err != nil:
		log.Printf("Moderation check failed for %s: %v", visualURL, err)
		eval.SafetyFlags = []string{CheckFailedFlag}
		notes.WriteString("Safety check failed. ")
	case flagged:
		eval.SafetyFlags = categories
		notes.WriteString(fmt.Sprintf("Safety concerns flagged: %s. ", strings.Join(categories, ", ")))
	}

	raw, err := s.judge.JudgeVisual(ctx, visualURL, sceneText)
	if err != nil {
		log.Printf("Vision judgment failed for %s: %v", visualURL, err)
		notes.WriteString("Vision check failed. ")
	} else {
		var judged judgeResponse
		if err := json.Unmarshal([]byte(stripCodeFences(raw)), &judged); err != nil {
			log.Printf("Vision response not parseable for %s: %v\nRaw content: %s", visualURL, err, raw)
			notes.WriteString("Vision evaluation parsing failed. ")
		} else {
			eval.RelevanceScore = judged.RelevanceScore
			eval.CoherenceScore = judged.CoherenceScore
			if judged.QualityAssessment != "" {
				eval.QualityAssessment = judged.QualityAssessment
			}
			notes.WriteString(judged.BriefJustification)
		}
	}

	eval.OverallScore = overallScore(&eval)
	eval.Notes = notes.String()
	return eval
}

// overallScore combines relevance and coherence, halves the result when a
// real safety flag exists, applies the quality multiplier, and clamps to
// [0,1].
func overallScore(eval *Evaluation) float64 {
	score := (eval.RelevanceScore + eval.CoherenceScore) / 2
	if !eval.Safe() {
		score *= 0.5
	}
	multiplier, ok := qualityMultipliers[eval.QualityAssessment]
	if !ok {
		multiplier = unknownQualityMultiplier
	}
	score *= multiplier

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// stripCodeFences removes a surrounding markdown ```json fence, which
// vision models frequently wrap JSON answers in.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}
