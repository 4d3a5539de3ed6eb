package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Avatar is a presenter registered with the avatar provider.
// APIReferenceID is the provider-side id used for video generation.
type Avatar struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	ImageURL       string    `gorm:"size:2048" json:"image_url"`
	APIReferenceID string    `gorm:"size:255" json:"api_reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Avatar) TableName() string {
	return "avatars"
}

func (a *Avatar) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CourseAvatar ties a course to the avatar used for its rendered videos.
type CourseAvatar struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"course_id"`
	AvatarID  *uuid.UUID `gorm:"type:uuid" json:"avatar_id,omitempty"`
	UseAvatar bool       `gorm:"default:false" json:"use_avatar"`

	Avatar *Avatar `gorm:"foreignKey:AvatarID" json:"avatar,omitempty"`
}

func (CourseAvatar) TableName() string {
	return "course_avatars"
}

func (ca *CourseAvatar) BeforeCreate(tx *gorm.DB) error {
	if ca.ID == uuid.Nil {
		ca.ID = uuid.New()
	}
	return nil
}
