package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Module is the generated content unit for exactly one selected objective.
// The unique index on ObjectiveID backs the upsert-by-objective semantics:
// regenerating a module for the same objective overwrites it in place.
type Module struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	ObjectiveID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"objective_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"not null;default:0" json:"order"`

	// Populated by the module render worker once scene videos are concatenated.
	FinalVideoPath *string `json:"final_video_path,omitempty"`

	Scenes []Scene `gorm:"foreignKey:ModuleID" json:"scenes,omitempty"`
}

func (Module) TableName() string {
	return "modules"
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
