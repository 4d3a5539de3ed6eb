package processing

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/openai/openai-go/v3"
)

// DefaultVoice is used when no voice is configured for a course.
const DefaultVoice = "alloy"

var validVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

// Synthesize converts text to MP3 audio bytes via the TTS API.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text provided for voiceover generation")
	}
	if !validVoices[voice] {
		log.Printf("Invalid voice %q, using default %q", voice, DefaultVoice)
		voice = DefaultVoice
	}

	resp, err := c.api.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI TTS error: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading TTS response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("OpenAI TTS returned no audio")
	}
	return audio, nil
}
