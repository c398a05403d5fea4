package services

import (
	"context"
	"testing"
	"time"

	"questboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuest(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	creator := createUser(t, db, 1)

	quest, err := svc.CreateQuest(context.Background(), creator.ID, QuestInput{
		Title:           "  Clean the river bank  ",
		Category:        "community",
		RewardPoints:    30,
		MaxParticipants: intPtr(4),
	})
	require.NoError(t, err)
	assert.NotZero(t, quest.ID)
	assert.Equal(t, "Clean the river bank", quest.Title)
	assert.Equal(t, models.QuestStatusOpen, quest.Status)
	assert.Equal(t, creator.ID, quest.CreatedBy)
	require.NotNil(t, quest.MaxParticipants)
	assert.Equal(t, 4, *quest.MaxParticipants)
}

func TestCreateQuest_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)

	cases := map[string]QuestInput{
		"empty title":       {Title: "   "},
		"long title":        {Title: string(make([]byte, 201))},
		"negative reward":   {Title: "x", RewardPoints: -1},
		"negative capacity": {Title: "x", MaxParticipants: intPtr(-1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateQuest(context.Background(), 1, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestGetQuest_IncludesParticipantCount(t *testing.T) {
	db := newTestDB(t)
	creator := createUser(t, db, 1)
	createQuest(t, db, 5, creator.ID, intPtr(3))
	join := newJoinService(t, db)
	require.Equal(t, JoinSucceeded, join.JoinQuest(context.Background(), 2, 5).Outcome)
	require.Equal(t, JoinSucceeded, join.JoinQuest(context.Background(), 3, 5).Outcome)

	quest, err := NewQuestService(db).GetQuest(context.Background(), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, quest.ParticipantCount)
	require.NotNil(t, quest.Creator)
	assert.Equal(t, creator.Email, quest.Creator.Email)

	_, err = NewQuestService(db).GetQuest(context.Background(), 999)
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestListQuests_FiltersAndPaging(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	ctx := context.Background()

	for i, in := range []QuestInput{
		{Title: "Paint the fence", Category: "home"},
		{Title: "Walk the dog", Category: "pets"},
		{Title: "Feed the cat", Category: "pets", Description: "Twice a day"},
	} {
		_, err := svc.CreateQuest(ctx, uint(i+1), in)
		require.NoError(t, err)
	}
	closed := models.QuestStatusClosed
	_, err := svc.UpdateQuest(ctx, Actor{Admin: true}, 1, QuestUpdate{Status: &closed})
	require.NoError(t, err)

	quests, total, err := svc.ListQuests(ctx, QuestFilter{Category: "pets"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, quests, 2)

	quests, total, err = svc.ListQuests(ctx, QuestFilter{Search: "TWICE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Feed the cat", quests[0].Title)

	quests, total, err = svc.ListQuests(ctx, QuestFilter{Status: models.QuestStatusOpen, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, quests, 1)

	quests, _, err = svc.ListQuests(ctx, QuestFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, quests, 3)
}

func TestUpdateQuest_Permissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	createQuest(t, db, 1, 10, nil)
	title := "Renamed"

	_, err := svc.UpdateQuest(context.Background(), Actor{UserID: 11}, 1, QuestUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	quest, err := svc.UpdateQuest(context.Background(), Actor{UserID: 10}, 1, QuestUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", quest.Title)

	_, err = svc.UpdateQuest(context.Background(), Actor{Admin: true}, 404, QuestUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrQuestNotFound)
}

func TestUpdateQuest_Capacity(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuestService(db)
	ctx := context.Background()
	createQuest(t, db, 1, 10, intPtr(5))
	join := newJoinService(t, db)
	for user := uint(1); user <= 3; user++ {
		require.Equal(t, JoinSucceeded, join.JoinQuest(ctx, user, 1).Outcome)
	}
	owner := Actor{UserID: 10}

	_, err := svc.UpdateQuest(ctx, owner, 1, QuestUpdate{MaxParticipants: intPtr(2)})
	assert.ErrorIs(t, err, ErrCapacityTooLow)

	quest, err := svc.UpdateQuest(ctx, owner, 1, QuestUpdate{MaxParticipants: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, *quest.MaxParticipants)
	assert.Equal(t, JoinFull, join.JoinQuest(ctx, 4, 1).Outcome)

	quest, err = svc.UpdateQuest(ctx, owner, 1, QuestUpdate{Unlimited: true})
	require.NoError(t, err)
	assert.Nil(t, quest.MaxParticipants)
	assert.Equal(t, JoinSucceeded, join.JoinQuest(ctx, 4, 1).Outcome)
}

func TestUpdateQuest_RejectsUnknownStatus(t *testing.T) {
	db := newTestDB(t)
	createQuest(t, db, 1, 10, nil)
	status := models.QuestStatus("paused")

	_, err := NewQuestService(db).UpdateQuest(context.Background(), Actor{UserID: 10}, 1, QuestUpdate{Status: &status})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteQuest_RemovesParticipantsAndReviews(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createQuest(t, db, 1, 10, nil)
	require.Equal(t, JoinSucceeded, newJoinService(t, db).JoinQuest(ctx, 2, 1).Outcome)
	_, err := NewParticipantService(db).CompleteQuest(ctx, 2, 1)
	require.NoError(t, err)
	_, err = NewReviewService(db).CreateReview(ctx, 2, 1, 5, "great")
	require.NoError(t, err)

	svc := NewQuestService(db)
	assert.ErrorIs(t, svc.DeleteQuest(ctx, Actor{UserID: 2}, 1), ErrForbidden)
	require.NoError(t, svc.DeleteQuest(ctx, Actor{UserID: 10}, 1))

	assert.Zero(t, countParticipants(t, db, 1))
	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.Zero(t, reviews)
	assert.ErrorIs(t, svc.DeleteQuest(ctx, Actor{Admin: true}, 1), ErrQuestNotFound)
}

func TestCloseExpiredQuests(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expired := createQuest(t, db, 1, 10, nil)
	future := createQuest(t, db, 2, 10, nil)
	createQuest(t, db, 3, 10, nil)
	require.NoError(t, db.Model(expired).Update("deadline", now.Add(-time.Hour)).Error)
	require.NoError(t, db.Model(future).Update("deadline", now.Add(time.Hour)).Error)

	svc := NewCleanupService(db, newTestLogger(t), time.Minute)
	svc.now = func() time.Time { return now }

	n, err := svc.CloseExpiredQuests(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var statuses []models.QuestStatus
	require.NoError(t, db.Model(&models.Quest{}).Order("id").Pluck("status", &statuses).Error)
	assert.Equal(t, []models.QuestStatus{models.QuestStatusClosed, models.QuestStatusOpen, models.QuestStatusOpen}, statuses)

	n, err = svc.CloseExpiredQuests(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCleanupService_StartStop(t *testing.T) {
	db := newTestDB(t)
	svc := NewCleanupService(db, newTestLogger(t), time.Hour)

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, svc.started.Load, time.Second, 5*time.Millisecond)
	svc.Stop()
	svc.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup worker did not stop")
	}
}

func TestCleanupService_StopBeforeStart(t *testing.T) {
	svc := NewCleanupService(newTestDB(t), newTestLogger(t), time.Hour)
	svc.Stop()

	// Start returns at once after Stop
	svc.Start(context.Background())
}
