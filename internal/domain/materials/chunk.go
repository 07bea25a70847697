package materials

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chunk is one overlapping window of a source file's text. Immutable once stored.
type Chunk struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SourceFileID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_chunk_file_ordinal,priority:1" json:"source_file_id"`
	SourceFile   *SourceFile `gorm:"constraint:OnDelete:CASCADE;foreignKey:SourceFileID;references:ID" json:"-"`
	OwnerID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`

	Ordinal     int    `gorm:"column:ordinal;not null;uniqueIndex:idx_chunk_file_ordinal,priority:2" json:"ordinal"`
	Content     string `gorm:"column:content;type:text;not null" json:"content"`
	ContentHash string `gorm:"column:content_hash;not null;index" json:"content_hash"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Chunk) TableName() string { return "chunks" }

func (c *Chunk) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// VectorID is the id the chunk is stored under in the vector index.
func (c *Chunk) VectorID() string { return c.ID.String() }
