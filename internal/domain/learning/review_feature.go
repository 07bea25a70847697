package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewFeatureSet is the per (owner, topic) signal the review scheduler consumes.
type ReviewFeatureSet struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_owner_topic,priority:1" json:"owner_id"`
	TopicID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_owner_topic,priority:2" json:"topic_id"`

	LatestScore     float64   `gorm:"column:latest_score;not null" json:"latest_score"`
	AvgScore        float64   `gorm:"column:avg_score;not null" json:"avg_score"`
	AttemptsCount   int       `gorm:"column:attempts_count;not null" json:"attempts_count"`
	LastAttemptDate time.Time `gorm:"column:last_attempt_date;not null" json:"last_attempt_date"`
	NextReviewDate  time.Time `gorm:"column:next_review_date;not null;index" json:"next_review_date"`
	Mastered        bool      `gorm:"column:mastered;not null" json:"mastered"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ReviewFeatureSet) TableName() string { return "review_features" }

func (r *ReviewFeatureSet) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
