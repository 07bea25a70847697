package domain

import (
	"github.com/aryansondharva/Aura/internal/domain/learning"
	"github.com/aryansondharva/Aura/internal/domain/materials"
)

const (
	PipelineChat   = materials.PipelineChat
	PipelineTopics = materials.PipelineTopics

	TopicStatusNotStarted = learning.TopicStatusNotStarted
	TopicStatusCompleted  = learning.TopicStatusCompleted
	TopicStatusWeak       = learning.TopicStatusWeak
)

type SourceFile = materials.SourceFile
type Chunk = materials.Chunk

type Topic = learning.Topic
type Question = learning.Question
type Attempt = learning.Attempt
type Answer = learning.Answer
type ReviewFeatureSet = learning.ReviewFeatureSet

var (
	OptionLetters    = learning.OptionLetters
	OptionsJSON      = learning.OptionsJSON
	ValidTopicStatus = learning.ValidTopicStatus
)

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&SourceFile{},
		&Chunk{},
		&Topic{},
		&Question{},
		&Attempt{},
		&Answer{},
		&ReviewFeatureSet{},
	}
}
