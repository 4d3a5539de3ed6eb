package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Objective is one learner-facing goal. Objectives are created in bulk from
// generated text at course creation; only the selected flag is mutated after.
type Objective struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	Selected bool      `gorm:"default:false" json:"selected"`
	Order    int       `gorm:"not null;default:0" json:"order"`
}

func (Objective) TableName() string {
	return "objectives"
}

func (o *Objective) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
