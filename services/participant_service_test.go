package services

import (
	"context"
	"testing"

	"questboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// joinedQuest sets up a quest owned by user 10 with userID already joined
func joinedQuest(t *testing.T, db *gorm.DB, questID, userID uint, reward int) {
	t.Helper()
	createUser(t, db, userID)
	quest := createQuest(t, db, questID, 10, nil)
	require.NoError(t, db.Model(quest).Update("reward_points", reward).Error)
	require.Equal(t, JoinSucceeded, newJoinService(t, db).JoinQuest(context.Background(), userID, questID).Outcome)
}

func TestListParticipants(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	joinedQuest(t, db, 1, 2, 0)
	createUser(t, db, 3)
	require.Equal(t, JoinSucceeded, newJoinService(t, db).JoinQuest(ctx, 3, 1).Outcome)

	svc := NewParticipantService(db)
	participants, err := svc.ListParticipants(ctx, 1)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, uint(2), participants[0].UserID)
	require.NotNil(t, participants[0].User)
	assert.Equal(t, "user2@example.com", participants[0].User.Email)

	_, err = svc.ListParticipants(ctx, 99)
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestJoinedQuests(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	joinedQuest(t, db, 1, 2, 0)
	createQuest(t, db, 2, 10, nil)
	require.Equal(t, JoinSucceeded, newJoinService(t, db).JoinQuest(ctx, 2, 2).Outcome)

	joined, err := NewParticipantService(db).JoinedQuests(ctx, 2)
	require.NoError(t, err)
	require.Len(t, joined, 2)
	for _, p := range joined {
		require.NotNil(t, p.Quest)
		assert.Equal(t, p.QuestID, p.Quest.ID)
	}

	none, err := NewParticipantService(db).JoinedQuests(ctx, 77)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCompleteQuest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	joinedQuest(t, db, 1, 2, 0)
	svc := NewParticipantService(db)

	participant, err := svc.CompleteQuest(ctx, 2, 1)
	require.NoError(t, err)
	assert.NotNil(t, participant.CompletedAt)

	_, err = svc.CompleteQuest(ctx, 2, 1)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	_, err = svc.CompleteQuest(ctx, 3, 1)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.CompleteQuest(ctx, 2, 42)
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestClearParticipant_CreditsRewardOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	joinedQuest(t, db, 1, 2, 25)
	svc := NewParticipantService(db)
	owner := Actor{UserID: 10}

	_, err := svc.ClearParticipant(ctx, owner, 1, 2)
	assert.ErrorIs(t, err, ErrNotCompleted)

	_, err = svc.CompleteQuest(ctx, 2, 1)
	require.NoError(t, err)

	_, err = svc.ClearParticipant(ctx, Actor{UserID: 2}, 1, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	cleared, err := svc.ClearParticipant(ctx, owner, 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, cleared.ClearedAt)

	_, err = svc.ClearParticipant(ctx, Actor{Admin: true}, 1, 2)
	assert.ErrorIs(t, err, ErrAlreadyCleared)

	var user models.User
	require.NoError(t, db.First(&user, 2).Error)
	assert.Equal(t, 25, user.Points)
}

func TestClearParticipant_Missing(t *testing.T) {
	db := newTestDB(t)
	createQuest(t, db, 1, 10, nil)
	svc := NewParticipantService(db)

	_, err := svc.ClearParticipant(context.Background(), Actor{Admin: true}, 1, 5)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.ClearParticipant(context.Background(), Actor{Admin: true}, 9, 5)
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestCreateReview(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	joinedQuest(t, db, 1, 2, 0)
	svc := NewReviewService(db)

	_, err := svc.CreateReview(ctx, 2, 1, 4, "fun")
	assert.ErrorIs(t, err, ErrNotCompleted)

	_, err = NewParticipantService(db).CompleteQuest(ctx, 2, 1)
	require.NoError(t, err)

	for _, rating := range []int{0, 6} {
		_, err = svc.CreateReview(ctx, 2, 1, rating, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	review, err := svc.CreateReview(ctx, 2, 1, 4, "  fun  ")
	require.NoError(t, err)
	assert.Equal(t, "fun", review.Comment)

	_, err = svc.CreateReview(ctx, 2, 1, 5, "again")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	_, err = svc.CreateReview(ctx, 3, 1, 5, "")
	assert.ErrorIs(t, err, ErrNotParticipant)

	reviews, err := svc.ListReviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].User)
	assert.Equal(t, 4, reviews[0].Rating)

	_, err = svc.ListReviews(ctx, 99)
	assert.ErrorIs(t, err, ErrQuestNotFound)
}
