package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pipelines a source file can be claimed for. The same bytes may be claimed once per pipeline.
const (
	PipelineChat   = "chat"
	PipelineTopics = "topics"
)

// SourceFile records that an owner uploaded some exact bytes into a pipeline. The unique index
// over (owner_id, content_hash, pipeline) is the duplicate-upload guard.
type SourceFile struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_source_file_owner_hash,priority:1" json:"owner_id"`
	ContentHash string    `gorm:"column:content_hash;not null;uniqueIndex:idx_source_file_owner_hash,priority:2" json:"content_hash"`
	Pipeline    string    `gorm:"column:pipeline;not null;uniqueIndex:idx_source_file_owner_hash,priority:3" json:"pipeline"`

	OriginalName string `gorm:"column:original_name" json:"original_name"`
	MimeType     string `gorm:"column:mime_type" json:"mime_type"`
	SizeBytes    int64  `gorm:"column:size_bytes;not null" json:"size_bytes"`
	ChunkCount   int    `gorm:"column:chunk_count;not null" json:"chunk_count"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SourceFile) TableName() string { return "source_files" }

func (f *SourceFile) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
