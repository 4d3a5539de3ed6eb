package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KnowledgeCheck is the generated quiz for one module.
type KnowledgeCheck struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"module_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`

	Questions []Question `gorm:"foreignKey:KnowledgeCheckID" json:"questions,omitempty"`
}

func (KnowledgeCheck) TableName() string {
	return "knowledge_checks"
}

func (k *KnowledgeCheck) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

type Question struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	KnowledgeCheckID uuid.UUID `gorm:"type:uuid;not null;index" json:"knowledge_check_id"`
	QuestionText     string    `gorm:"type:text;not null" json:"question_text"`
	Explanation      string    `gorm:"type:text" json:"explanation"`
	Order            int       `gorm:"not null;default:0" json:"order"`

	Options []Option `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"default:false" json:"is_correct"`
	Order      int       `gorm:"not null;default:0" json:"order"`
}

func (Option) TableName() string {
	return "options"
}

func (o *Option) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
