package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var OptionLetters = [4]string{"A", "B", "C", "D"}

// Question is a four-option multiple choice item. Immutable after creation; retries re-surface
// the same row.
type Question struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID uuid.UUID `gorm:"type:uuid;not null;index" json:"topic_id"`
	Topic   *Topic    `gorm:"constraint:OnDelete:CASCADE;foreignKey:TopicID;references:ID" json:"-"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	Prompt        string         `gorm:"column:prompt;type:text;not null" json:"prompt"`
	Options       datatypes.JSON `gorm:"column:options;not null" json:"options"`
	CorrectOption string         `gorm:"column:correct_option;size:1;not null" json:"correct_option"`
	Explanation   string         `gorm:"column:explanation;type:text" json:"explanation"`
	Difficulty    string         `gorm:"column:difficulty" json:"difficulty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Question) TableName() string { return "questions" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *Question) OptionList() []string {
	var out []string
	if len(q.Options) == 0 {
		return out
	}
	_ = json.Unmarshal(q.Options, &out)
	return out
}

func OptionsJSON(opts [4]string) datatypes.JSON {
	b, _ := json.Marshal(opts[:])
	return datatypes.JSON(b)
}
