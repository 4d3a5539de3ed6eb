package processing

import (
	"context"
	"fmt"

	"github.com/Abalmaz/course-creator/models"
)

// Quiz is the structured output for knowledge check generation.
type Quiz struct {
	Questions []QuizQuestion `json:"questions" jsonschema_description:"Five multiple-choice questions testing the module's key concepts"`
}

type QuizQuestion struct {
	Question      string   `json:"question" jsonschema_description:"The question text"`
	Options       []string `json:"options" jsonschema_description:"Four possible answers, each prefixed with its letter, e.g. 'A. ...'"`
	CorrectAnswer string   `json:"correct_answer" jsonschema_description:"The letter of the correct answer (A, B, C or D)"`
	Explanation   string   `json:"explanation" jsonschema_description:"A brief explanation of why the answer is correct"`
}

var quizSchema = GenerateSchema[Quiz]()

// KnowledgeCheck generates a five-question multiple-choice quiz for a module.
func (c *Client) KnowledgeCheck(ctx context.Context, moduleDescription string, course models.CourseContext) (*Quiz, error) {
	prompt := fmt.Sprintf(
		"Create a knowledge check quiz for a module with the following description:\n\n"+
			"'%s'\n\n"+
			"The module is part of the course '%s' in %s, targeting %s. "+
			"Generate 5 multiple-choice questions that test understanding of key concepts from this module. "+
			"For each question, provide the question text, four possible answers (A, B, C, D), "+
			"the correct answer letter, and a brief explanation of why the answer is correct.",
		moduleDescription, course.Name, course.Language, course.TargetAudience)

	quiz, err := structuredResponse[Quiz](ctx, c,
		"knowledge_check", "A multiple-choice quiz for a course module", prompt, quizSchema)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("OpenAI returned no quiz questions")
	}
	return quiz, nil
}
