// services/quest_service.go - Quest Board Business Logic
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"questboard/models"

	"gorm.io/gorm"
)

const (
	DefaultQuestPageSize = 20
	MaxQuestPageSize     = 100
)

type QuestService struct {
	db *gorm.DB
}

func NewQuestService(db *gorm.DB) *QuestService {
	return &QuestService{db: db}
}

// QuestInput holds the fields accepted when posting a quest
type QuestInput struct {
	Title           string
	Description     string
	Category        string
	RewardPoints    int
	MaxParticipants *int
	Deadline        *time.Time
}

// QuestUpdate holds a partial update. Nil fields are left alone;
// Unlimited removes the capacity limit.
type QuestUpdate struct {
	Title           *string
	Description     *string
	Category        *string
	RewardPoints    *int
	MaxParticipants *int
	Unlimited       bool
	Status          *models.QuestStatus
	Deadline        *time.Time
}

// QuestFilter narrows quest listings
type QuestFilter struct {
	Status   models.QuestStatus
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ================== QUEST CRUD OPERATIONS ==================

// CreateQuest posts a new open quest owned by creatorID
func (s *QuestService) CreateQuest(ctx context.Context, creatorID uint, in QuestInput) (*models.Quest, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(in.Title) > 200 {
		return nil, fmt.Errorf("%w: title must be at most 200 characters", ErrInvalidInput)
	}
	if err := validateQuestNumbers(&in.RewardPoints, in.MaxParticipants); err != nil {
		return nil, err
	}

	quest := &models.Quest{
		Title:           in.Title,
		Description:     in.Description,
		Category:        strings.TrimSpace(in.Category),
		RewardPoints:    in.RewardPoints,
		Status:          models.QuestStatusOpen,
		MaxParticipants: in.MaxParticipants,
		Deadline:        in.Deadline,
		CreatedBy:       creatorID,
	}

	if err := s.db.WithContext(ctx).Create(quest).Error; err != nil {
		return nil, fmt.Errorf("create quest: %w", err)
	}
	return quest, nil
}

// GetQuest returns a quest with its participant count
func (s *QuestService) GetQuest(ctx context.Context, questID uint) (*models.Quest, error) {
	var quest models.Quest
	err := s.db.WithContext(ctx).
		Scopes(withParticipantCount).
		Preload("Creator").
		Where("quests.id = ?", questID).
		Take(&quest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quest %d: %w", questID, err)
	}
	return &quest, nil
}

// ListQuests returns a page of quests, newest first, and the total number
// of quests matching the filter
func (s *QuestService) ListQuests(ctx context.Context, filter QuestFilter) ([]models.Quest, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultQuestPageSize
	}
	if filter.Limit > MaxQuestPageSize {
		filter.Limit = MaxQuestPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	base := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Quest{})
		if filter.Status != "" {
			query = query.Where("quests.status = ?", filter.Status)
		}
		if filter.Category != "" {
			query = query.Where("quests.category = ?", filter.Category)
		}
		if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
			like := "%" + search + "%"
			query = query.Where("LOWER(quests.title) LIKE ? OR LOWER(quests.description) LIKE ?", like, like)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count quests: %w", err)
	}

	var quests []models.Quest
	if err := base().
		Scopes(withParticipantCount).
		Order("quests.created_at DESC, quests.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&quests).Error; err != nil {
		return nil, 0, fmt.Errorf("list quests: %w", err)
	}

	return quests, total, nil
}

// UpdateQuest applies a partial update (creator or admin only). The quest
// row is locked while a new capacity is checked against the participant
// count, the same lock joins take.
func (s *QuestService) UpdateQuest(ctx context.Context, actor Actor, questID uint, upd QuestUpdate) (*models.Quest, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		err := forUpdate(tx).Where("id = ?", questID).Take(&quest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestNotFound
		}
		if err != nil {
			return err
		}

		if !actor.canManage(quest.CreatedBy) {
			return fmt.Errorf("%w: only the quest creator or an admin can update a quest", ErrForbidden)
		}

		updates := map[string]interface{}{
			"updated_at": time.Now().UTC(),
		}

		if upd.Title != nil {
			title := strings.TrimSpace(*upd.Title)
			if title == "" || len(title) > 200 {
				return fmt.Errorf("%w: title must be 1 to 200 characters", ErrInvalidInput)
			}
			updates["title"] = title
		}
		if upd.Description != nil {
			updates["description"] = *upd.Description
		}
		if upd.Category != nil {
			updates["category"] = strings.TrimSpace(*upd.Category)
		}
		if err := validateQuestNumbers(upd.RewardPoints, upd.MaxParticipants); err != nil {
			return err
		}
		if upd.RewardPoints != nil {
			updates["reward_points"] = *upd.RewardPoints
		}
		if upd.Status != nil {
			if !upd.Status.Valid() {
				return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *upd.Status)
			}
			updates["status"] = *upd.Status
		}
		if upd.Deadline != nil {
			updates["deadline"] = *upd.Deadline
		}

		switch {
		case upd.Unlimited:
			updates["max_participants"] = gorm.Expr("NULL")
		case upd.MaxParticipants != nil:
			var count int64
			if err := tx.Model(&models.QuestParticipant{}).Where("quest_id = ?", questID).Count(&count).Error; err != nil {
				return err
			}
			if int64(*upd.MaxParticipants) < count {
				return fmt.Errorf("%w: %d participants already joined", ErrCapacityTooLow, count)
			}
			updates["max_participants"] = *upd.MaxParticipants
		}

		return tx.Model(&models.Quest{}).Where("id = ?", questID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return s.GetQuest(ctx, questID)
}

// DeleteQuest removes a quest with its participants and reviews (creator or admin only)
func (s *QuestService) DeleteQuest(ctx context.Context, actor Actor, questID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		err := forUpdate(tx).Where("id = ?", questID).Take(&quest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestNotFound
		}
		if err != nil {
			return err
		}

		if !actor.canManage(quest.CreatedBy) {
			return fmt.Errorf("%w: only the quest creator or an admin can delete a quest", ErrForbidden)
		}

		if err := tx.Where("quest_id = ?", questID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quest_id = ?", questID).Delete(&models.QuestParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quest{}, questID).Error
	})
}

// ================== HELPER FUNCTIONS ==================

// withParticipantCount selects quests.* plus a participant_count column
func withParticipantCount(db *gorm.DB) *gorm.DB {
	return db.Select("quests.*, (SELECT COUNT(*) FROM quest_participants WHERE quest_participants.quest_id = quests.id) AS participant_count")
}

func validateQuestNumbers(rewardPoints, maxParticipants *int) error {
	if rewardPoints != nil && *rewardPoints < 0 {
		return fmt.Errorf("%w: reward_points must not be negative", ErrInvalidInput)
	}
	if maxParticipants != nil && *maxParticipants < 0 {
		return fmt.Errorf("%w: max_participants must not be negative", ErrInvalidInput)
	}
	return nil
}
