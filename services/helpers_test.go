package services

import (
	"fmt"
	"testing"

	"questboard/database"
	"questboard/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	log := newTestLogger(t)

	db, err := database.OpenSQLite(":memory:", log)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, log))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func createUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		UID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", id),
		Email:        fmt.Sprintf("user%d@example.com", id),
		DisplayName:  fmt.Sprintf("User %d", id),
		PasswordHash: "x",
		Role:         models.RoleMember,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createQuest(t *testing.T, db *gorm.DB, id uint, creatorID uint, capacity *int) *models.Quest {
	t.Helper()
	quest := &models.Quest{
		ID:              id,
		Title:           fmt.Sprintf("Quest %d", id),
		Status:          models.QuestStatusOpen,
		RewardPoints:    10,
		MaxParticipants: capacity,
		CreatedBy:       creatorID,
	}
	require.NoError(t, db.Create(quest).Error)
	return quest
}

func countParticipants(t *testing.T, db *gorm.DB, questID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.QuestParticipant{}).Where("quest_id = ?", questID).Count(&n).Error)
	return n
}

func intPtr(v int) *int { return &v }
