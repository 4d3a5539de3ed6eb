package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course is the top-level unit created at intake. Objectives are generated
// once at creation time; modules are (re)generated from selected objectives.
type Course struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Language       string    `gorm:"size:2;default:'en'" json:"language"`
	TargetAudience string    `gorm:"size:255" json:"target_audience"`
	ContentStyle   string    `gorm:"size:20;default:'conversational'" json:"content_style"`
	Documents      string    `gorm:"type:text" json:"documents,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Objectives []Objective `gorm:"foreignKey:CourseID" json:"objectives,omitempty"`
	Modules    []Module    `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Context returns the course fields that parameterize every generation prompt.
func (c *Course) Context() CourseContext {
	return CourseContext{
		Name:           c.Name,
		Language:       c.Language,
		TargetAudience: c.TargetAudience,
		ContentStyle:   c.ContentStyle,
	}
}

// CourseContext carries course settings into the generation collaborators.
type CourseContext struct {
	Name           string
	Language       string
	TargetAudience string
	ContentStyle   string
}
