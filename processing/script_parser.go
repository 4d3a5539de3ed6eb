package processing

import (
	"strconv"
	"strings"
)

// SceneStub is one parsed scene block from a generated script.
type SceneStub struct {
	SceneNumber int
	Visual      string
	Text        string
	Voiceover   string
}

// Line markers emitted by the script prompt. Generated output drifts, so the
// parser tolerates missing fields by dropping incomplete blocks rather than
// failing.
const (
	sceneMarker     = "SCENE"
	visualMarker    = "VISUAL:"
	textMarker      = "TEXT:"
	voiceoverMarker = "VOICEOVER:"
)

// ParseScript walks the raw script text line by line and collects complete
// scene blocks in source order. A scene opens at a "SCENE N:" line; VISUAL,
// TEXT and VOICEOVER lines fill it in, and any unmarked line extends an open
// voiceover (voiceovers routinely span multiple lines). A scene is emitted,
// on the next scene marker or at end of input, only when all three fields
// are non-empty. Malformed input never produces an error; in the worst case
// the result is empty.
func ParseScript(raw string) []SceneStub {
	var (
		scenes        []SceneStub
		current       *SceneStub
		voiceoverBuf  []string
		voiceoverOpen bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Voiceover = strings.TrimSpace(strings.Join(voiceoverBuf, " "))
		if current.Visual != "" && current.Text != "" && current.Voiceover != "" {
			scenes = append(scenes, *current)
		}
		current = nil
		voiceoverBuf = nil
		voiceoverOpen = false
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, sceneMarker):
			flush()
			current = &SceneStub{SceneNumber: parseSceneNumber(line)}
		case current == nil:
			// Preamble before the first scene marker.
		case strings.HasPrefix(line, visualMarker):
			current.Visual = strings.TrimSpace(line[len(visualMarker):])
			voiceoverOpen = false
		case strings.HasPrefix(line, textMarker):
			current.Text = strings.TrimSpace(line[len(textMarker):])
			voiceoverOpen = false
		case strings.HasPrefix(line, voiceoverMarker):
			voiceoverBuf = append(voiceoverBuf, strings.TrimSpace(line[len(voiceoverMarker):]))
			voiceoverOpen = true
		case voiceoverOpen:
			voiceoverBuf = append(voiceoverBuf, line)
		}
	}
	flush()

	return scenes
}

// parseSceneNumber extracts the trailing number of a "SCENE 3:" marker line.
// An unparseable number defaults to 0; the positional index is deliberately
// not substituted so scene numbering always mirrors the generated text.
func parseSceneNumber(line string) int {
	head, _, _ := strings.Cut(line, ":")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	return n
}
