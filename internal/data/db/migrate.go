package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/aryansondharva/Aura/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.All()...); err != nil {
		return err
	}
	return EnsureReviewIndexes(db)
}

// EnsureReviewIndexes adds the ordering indexes the latest-attempt and overdue queries rely on.
func EnsureReviewIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_attempt_owner_topic_submitted
		ON attempts (owner_id, topic_id, submitted_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_attempt_owner_topic_submitted: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_review_owner_next
		ON review_features (owner_id, next_review_date);
	`).Error; err != nil {
		return fmt.Errorf("create idx_review_owner_next: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}
