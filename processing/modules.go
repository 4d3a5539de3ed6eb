package processing

import (
	"context"
	"fmt"

	"github.com/Abalmaz/course-creator/models"
)

// ModuleDescription generates the 150-200 word description for the module
// addressing one learning objective.
func (c *Client) ModuleDescription(ctx context.Context, objective string, course models.CourseContext) (string, error) {
	prompt := fmt.Sprintf(
		"Create a detailed module description for a course titled '%s' in %s. "+
			"This module addresses the following learning objective: '%s'. "+
			"The target audience is %s and the content style should be %s. "+
			"The description should be 150-200 words and include: "+
			"1. An engaging introduction to the topic "+
			"2. Key concepts that will be covered "+
			"3. Why this module is important for the learner "+
			"4. How it connects to the overall course objective",
		course.Name, course.Language, objective, course.TargetAudience, course.ContentStyle)

	return c.chatText(ctx,
		"You are an expert curriculum designer who creates engaging and informative module descriptions for online courses.",
		prompt, 300)
}

// VideoScript generates the raw scene-structured script text for a module.
// The output is free-form text with SCENE/VISUAL/TEXT/VOICEOVER markers;
// ParseScript turns it into scene stubs.
func (c *Client) VideoScript(ctx context.Context, description string, course models.CourseContext) (string, error) {
	prompt := fmt.Sprintf(
		"Create a script for a 3-minute educational video based on the following module description:\n\n"+
			"'%s'\n\n"+
			"The video is part of the course '%s' in %s, targeting %s with a %s style. "+
			"Structure the script as 5-7 distinct scenes. For each scene, provide:\n"+
			"1. Scene description (visual setting, background elements, mood)\n"+
			"2. On-screen text (concise key points that appear on screen)\n"+
			"3. Voiceover script (150-200 words per scene)\n\n"+
			"Format each scene as:\n"+
			"SCENE X:\n"+
			"VISUAL: [scene description]\n"+
			"TEXT: [on-screen text]\n"+
			"VOICEOVER: [voiceover script]\n\n"+
			"Ensure the entire video script can be delivered in approximately 3 minutes.",
		description, course.Name, course.Language, course.TargetAudience, course.ContentStyle)

	return c.chatText(ctx,
		"You are an expert video scriptwriter who creates engaging educational content.",
		prompt, 1000)
}

// VoiceoverText rewrites scene text for natural TTS delivery. Callers keep
// the original text when this fails.
func (c *Client) VoiceoverText(ctx context.Context, sceneText, language string) (string, error) {
	prompt := fmt.Sprintf(
		"Optimize the following text for a natural-sounding voiceover in %s:\n\n"+
			"'%s'\n\n"+
			"Make it conversational, easy to speak, and maintain the same information. "+
			"Add appropriate pauses (with commas and periods) and emphasis where needed. "+
			"Avoid complex words that might be difficult to pronounce.",
		language, sceneText)

	return c.chatText(ctx,
		"You are an expert in creating natural-sounding voiceover scripts.",
		prompt, 300)
}
