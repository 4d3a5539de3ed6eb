package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Queue names. The API enqueues render jobs, the scheduler enqueues
// voiceover retries, and the worker consumes all three.
const (
	// QueueSceneVoiceover retries voiceover synthesis for scenes whose
	// audio is still missing after module generation.
	QueueSceneVoiceover = "q_scene_voiceover"

	// QueueSceneRender composites one scene video (background or avatar
	// footage + voiceover + on-screen text) via the render service.
	QueueSceneRender = "q_scene_render"

	// QueueModuleRender concatenates a module's rendered scene videos.
	QueueModuleRender = "q_module_render"
)

// Task payloads, JSON-marshalled onto the Redis lists.

type SceneVoiceoverPayload struct {
	SceneID uuid.UUID `json:"scene_id"`
}

type SceneRenderPayload struct {
	SceneID uuid.UUID `json:"scene_id"`
}

type ModuleRenderPayload struct {
	ModuleID uuid.UUID `json:"module_id"`
}

// Marshal creates a JSON payload for a task.
func Marshal(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
