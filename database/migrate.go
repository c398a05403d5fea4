// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"

	"questboard/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table and index the board uses
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Quest{},
		&models.QuestParticipant{},
		&models.Review{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	log.Info("Migrations completed")
	return nil
}

// createIndexes adds the listing indexes AutoMigrate does not derive from tags
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// Quest browsing
		"CREATE INDEX IF NOT EXISTS idx_quests_status_created ON quests(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_quests_deadline ON quests(deadline)",

		// Participant lookups by user ("my quests")
		"CREATE INDEX IF NOT EXISTS idx_quest_participants_user ON quest_participants(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_quest_participants_joined ON quest_participants(joined_at DESC)",

		// Leaderboard
		"CREATE INDEX IF NOT EXISTS idx_users_points ON users(points DESC)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
