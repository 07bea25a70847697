package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attempt is one graded quiz submission. Append-only, except that the overdue sweep may zero
// the score of a topic's latest attempt.
type Attempt struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_owner_topic,priority:1" json:"owner_id"`
	TopicID uuid.UUID `gorm:"type:uuid;not null;index:idx_attempt_owner_topic,priority:2" json:"topic_id"`

	Score          float64 `gorm:"column:score;not null" json:"score"`
	CorrectCount   int     `gorm:"column:correct_count;not null" json:"correct_count"`
	TotalQuestions int     `gorm:"column:total_questions;not null" json:"total_questions"`

	SubmittedAt time.Time `gorm:"column:submitted_at;not null;index" json:"submitted_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`

	Answers []*Answer `gorm:"foreignKey:AttemptID;references:ID" json:"answers,omitempty"`
}

func (Attempt) TableName() string { return "attempts" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}
	return nil
}

type Answer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID  uuid.UUID `gorm:"type:uuid;not null;index" json:"attempt_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`

	SelectedOption string `gorm:"column:selected_option;size:1" json:"selected_option"`
	IsCorrect      bool   `gorm:"column:is_correct;not null" json:"is_correct"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Answer) TableName() string { return "answers" }

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
