// services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"questboard/models"

	"gorm.io/gorm"
)

const maxReviewCommentLength = 2000

type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// ListReviews returns a quest's reviews, newest first
func (s *ReviewService) ListReviews(ctx context.Context, questID uint) ([]models.Review, error) {
	db := s.db.WithContext(ctx)
	if err := questExists(db, questID); err != nil {
		return nil, err
	}

	var reviews []models.Review
	err := db.Where("quest_id = ?", questID).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	return reviews, err
}

// CreateReview records a rating from a participant who completed the quest.
// One review per user and quest.
func (s *ReviewService) CreateReview(ctx context.Context, userID, questID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxReviewCommentLength {
		return nil, fmt.Errorf("%w: comment must be at most %d characters", ErrInvalidInput, maxReviewCommentLength)
	}

	db := s.db.WithContext(ctx)
	participant, err := findParticipant(db, userID, questID)
	if err != nil {
		return nil, err
	}
	if participant.CompletedAt == nil {
		return nil, ErrNotCompleted
	}

	review := &models.Review{
		QuestID: questID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	if err := db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	return review, nil
}
