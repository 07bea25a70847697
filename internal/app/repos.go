package app

import (
	"gorm.io/gorm"

	"github.com/aryansondharva/Aura/internal/data/repos"
	"github.com/aryansondharva/Aura/internal/platform/logger"
)

type Repos struct {
	SourceFile    repos.SourceFileRepo
	Chunk         repos.ChunkRepo
	Topic         repos.TopicRepo
	Question      repos.QuestionRepo
	Attempt       repos.AttemptRepo
	ReviewFeature repos.ReviewFeatureRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		SourceFile:    repos.NewSourceFileRepo(db, log),
		Chunk:         repos.NewChunkRepo(db, log),
		Topic:         repos.NewTopicRepo(db, log),
		Question:      repos.NewQuestionRepo(db, log),
		Attempt:       repos.NewAttemptRepo(db, log),
		ReviewFeature: repos.NewReviewFeatureRepo(db, log),
	}
}
