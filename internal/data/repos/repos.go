package repos

import (
	"gorm.io/gorm"

	"github.com/aryansondharva/Aura/internal/data/repos/learning"
	"github.com/aryansondharva/Aura/internal/data/repos/materials"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type SourceFileRepo = materials.SourceFileRepo
type ChunkRepo = materials.ChunkRepo

type TopicRepo = learning.TopicRepo
type QuestionRepo = learning.QuestionRepo
type AttemptRepo = learning.AttemptRepo
type ReviewFeatureRepo = learning.ReviewFeatureRepo

func NewSourceFileRepo(db *gorm.DB, log *logger.Logger) SourceFileRepo {
	return materials.NewSourceFileRepo(db, log)
}

func NewChunkRepo(db *gorm.DB, log *logger.Logger) ChunkRepo {
	return materials.NewChunkRepo(db, log)
}

func NewTopicRepo(db *gorm.DB, log *logger.Logger) TopicRepo {
	return learning.NewTopicRepo(db, log)
}

func NewQuestionRepo(db *gorm.DB, log *logger.Logger) QuestionRepo {
	return learning.NewQuestionRepo(db, log)
}

func NewAttemptRepo(db *gorm.DB, log *logger.Logger) AttemptRepo {
	return learning.NewAttemptRepo(db, log)
}

func NewReviewFeatureRepo(db *gorm.DB, log *logger.Logger) ReviewFeatureRepo {
	return learning.NewReviewFeatureRepo(db, log)
}
