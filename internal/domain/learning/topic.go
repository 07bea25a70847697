package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TopicStatusNotStarted = "NotStarted"
	TopicStatusCompleted  = "Completed"
	TopicStatusWeak       = "Weak"
)

// Topic is one cluster of chunks with a generated title and summary.
// Status moves only through scoring and the overdue sweep.
type Topic struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index:idx_topic_owner_hash,priority:1" json:"owner_id"`

	Title         string `gorm:"column:title;not null" json:"title"`
	Summary       string `gorm:"column:summary;type:text" json:"summary"`
	MergedContent string `gorm:"column:merged_content;type:text;not null" json:"-"`
	Status        string `gorm:"column:status;not null" json:"status"`

	SourceFileHash string     `gorm:"column:source_file_hash;not null;index:idx_topic_owner_hash,priority:2" json:"source_file_hash"`
	SourceFileID   *uuid.UUID `gorm:"type:uuid;index" json:"source_file_id,omitempty"`
	ClusterIndex   int        `gorm:"column:cluster_index;not null" json:"cluster_index"`
	ChunkCount     int        `gorm:"column:chunk_count;not null" json:"chunk_count"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topics" }

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TopicStatusNotStarted
	}
	return nil
}

func ValidTopicStatus(s string) bool {
	switch s {
	case TopicStatusNotStarted, TopicStatusCompleted, TopicStatusWeak:
		return true
	default:
		return false
	}
}
