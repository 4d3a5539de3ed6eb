package processing

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Abalmaz/course-creator/models"
)

const maxObjectives = 5

// CourseObjectives generates the learning objectives for a new course.
// The model is asked for a numbered list, which is parsed into individual
// objective strings; at most maxObjectives are returned.
func (c *Client) CourseObjectives(ctx context.Context, course models.Course) ([]string, error) {
	documentContext := ""
	if course.Documents != "" {
		documentContext = fmt.Sprintf("The following documents were provided as reference material: %s\n", course.Documents)
	}

	prompt := fmt.Sprintf(
		"Generate %d distinct learning objectives for an online video course titled '%s'. "+
			"The course is intended for '%s' and should be presented in a '%s' style. "+
			"The course language is %s. "+
			"%s"+
			"Each objective should clearly state what the learner will be able to do after completing the relevant module(s). "+
			"Format the output as a numbered list, with each objective on a new line.",
		maxObjectives, course.Name, course.TargetAudience, course.ContentStyle, course.Language, documentContext)

	content, err := c.chatText(ctx,
		"You are an expert instructional designer tasked with creating clear and actionable learning objectives for online courses.",
		prompt, 200)
	if err != nil {
		return nil, err
	}

	objectives := parseNumberedList(content)
	if len(objectives) == 0 {
		return nil, fmt.Errorf("no objectives found in response: %q", content)
	}
	if len(objectives) > maxObjectives {
		objectives = objectives[:maxObjectives]
	}
	return objectives, nil
}

// parseNumberedList extracts the items of a "1. foo\n2. bar" style list,
// stripping the leading number and its "." or ")" delimiter.
func parseNumberedList(content string) []string {
	var items []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !unicode.IsDigit(rune(line[0])) {
			continue
		}
		if i := strings.IndexAny(line, ".)"); i >= 0 {
			line = line[i+1:]
		}
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}
