package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scene is one segment of a module video. Scenes are replaced wholesale on
// every regeneration of their module; collaborators fill in the audio and
// rendered-video fields afterwards.
type Scene struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"module_id"`
	SceneNumber int       `gorm:"not null" json:"scene_number"`

	VisualDescription string `gorm:"type:text" json:"visual_description"`
	OnScreenText      string `gorm:"type:text" json:"on_screen_text"`
	VoiceoverText     string `gorm:"type:text" json:"voiceover_text"`

	// Nil means no suitable unique background was found for this scene.
	BackgroundVideoURL *string `json:"background_video_url,omitempty"`
	// Nil until voiceover synthesis succeeds; a retry sweep picks these up.
	VoiceoverAudioPath *string `json:"voiceover_audio_path,omitempty"`
	// Set when the course renders through the avatar provider instead of
	// stock background footage.
	AvatarVideoURL    *string `json:"avatar_video_url,omitempty"`
	RenderedVideoPath *string `json:"rendered_video_path,omitempty"`
}

func (Scene) TableName() string {
	return "scenes"
}

func (s *Scene) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
