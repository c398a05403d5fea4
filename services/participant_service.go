// services/participant_service.go - Quest participation after joining
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"questboard/models"

	"gorm.io/gorm"
)

// ParticipantService manages existing participations. Joining goes through
// JoinService; nothing here inserts participant rows.
type ParticipantService struct {
	db *gorm.DB
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{db: db}
}

// ListParticipants returns a quest's participants in join order
func (s *ParticipantService) ListParticipants(ctx context.Context, questID uint) ([]models.QuestParticipant, error) {
	if err := questExists(s.db.WithContext(ctx), questID); err != nil {
		return nil, err
	}

	var participants []models.QuestParticipant
	err := s.db.WithContext(ctx).
		Where("quest_id = ?", questID).
		Preload("User").
		Order("joined_at ASC, id ASC").
		Find(&participants).Error
	return participants, err
}

// JoinedQuests returns the quests a user has joined, most recent first
func (s *ParticipantService) JoinedQuests(ctx context.Context, userID uint) ([]models.QuestParticipant, error) {
	var participants []models.QuestParticipant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Quest").
		Order("joined_at DESC, id DESC").
		Find(&participants).Error
	return participants, err
}

// CompleteQuest marks the caller's participation as completed
func (s *ParticipantService) CompleteQuest(ctx context.Context, userID, questID uint) (*models.QuestParticipant, error) {
	db := s.db.WithContext(ctx)

	now := time.Now().UTC()
	res := db.Model(&models.QuestParticipant{}).
		Where("user_id = ? AND quest_id = ? AND completed_at IS NULL", userID, questID).
		Update("completed_at", now)
	if res.Error != nil {
		return nil, fmt.Errorf("complete quest: %w", res.Error)
	}

	participant, err := findParticipant(db, userID, questID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ErrAlreadyCompleted
	}
	return participant, nil
}

// ClearParticipant confirms a completed participation (quest creator or
// admin only) and credits the quest's reward points to the participant
func (s *ParticipantService) ClearParticipant(ctx context.Context, actor Actor, questID, userID uint) (*models.QuestParticipant, error) {
	var cleared *models.QuestParticipant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		err := tx.Where("id = ?", questID).Take(&quest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestNotFound
		}
		if err != nil {
			return err
		}

		if !actor.canManage(quest.CreatedBy) {
			return fmt.Errorf("%w: only the quest creator or an admin can clear participants", ErrForbidden)
		}

		participant, err := findParticipant(tx, userID, questID)
		if err != nil {
			return err
		}
		if participant.CompletedAt == nil {
			return ErrNotCompleted
		}

		// The cleared_at guard makes a concurrent second clear a no-op
		now := time.Now().UTC()
		res := tx.Model(&models.QuestParticipant{}).
			Where("id = ? AND cleared_at IS NULL", participant.ID).
			Update("cleared_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCleared
		}

		if quest.RewardPoints > 0 {
			if err := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("points", gorm.Expr("points + ?", quest.RewardPoints)).Error; err != nil {
				return err
			}
		}

		participant.ClearedAt = &now
		cleared = participant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cleared, nil
}

// ================== HELPER FUNCTIONS ==================

func questExists(db *gorm.DB, questID uint) error {
	var count int64
	if err := db.Model(&models.Quest{}).Where("id = ?", questID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrQuestNotFound
	}
	return nil
}

// findParticipant loads the (user, quest) participation, reporting a missing
// quest before a missing membership
func findParticipant(db *gorm.DB, userID, questID uint) (*models.QuestParticipant, error) {
	var participant models.QuestParticipant
	err := db.Where("user_id = ? AND quest_id = ?", userID, questID).Take(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := questExists(db, questID); err != nil {
			return nil, err
		}
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}
