// services/quest_join.go - Quest join transaction
package services

import (
	"context"
	"errors"
	"fmt"

	"questboard/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JoinOutcome is the result tag of JoinQuest
type JoinOutcome int

const (
	JoinSucceeded JoinOutcome = iota
	JoinNotFound
	JoinDuplicate
	JoinFull
	JoinError
)

func (o JoinOutcome) String() string {
	switch o {
	case JoinSucceeded:
		return "success"
	case JoinNotFound:
		return "not_found"
	case JoinDuplicate:
		return "duplicate"
	case JoinFull:
		return "full"
	default:
		return "error"
	}
}

// JoinResult carries the participant row on JoinSucceeded and the cause on
// JoinError. It is empty otherwise.
type JoinResult struct {
	Outcome     JoinOutcome
	Quest       *models.Quest
	Participant *models.QuestParticipant
	Err         error
}

// Sentinels returned from inside the transaction to roll it back
var (
	errJoinNotFound  = errors.New("join: quest not found")
	errJoinDuplicate = errors.New("join: already a participant")
	errJoinFull      = errors.New("join: quest is full")
)

// JoinService admits users into quests. It is the only code that inserts
// quest_participants rows.
type JoinService struct {
	store JoinStore
	log   *zap.Logger
}

func NewJoinService(store JoinStore, log *zap.Logger) *JoinService {
	return &JoinService{store: store, log: log}
}

// JoinQuest adds userID to questID. The quest row stays locked from the
// existence check until commit, so concurrent joins of one quest run their
// duplicate and capacity checks one after another. JoinQuest never panics
// and never returns a bare error.
func (s *JoinService) JoinQuest(ctx context.Context, userID, questID uint) JoinResult {
	quest, participant, err := s.join(ctx, userID, questID)

	result := JoinResult{Outcome: classifyJoinError(err)}
	switch result.Outcome {
	case JoinSucceeded:
		result.Quest = quest
		result.Participant = participant
		s.log.Info("User joined quest",
			zap.Uint("user_id", userID),
			zap.Uint("quest_id", questID),
			zap.Uint("participant_id", participant.ID))
	case JoinError:
		result.Err = err
		s.log.Error("Join quest failed",
			zap.Uint("user_id", userID),
			zap.Uint("quest_id", questID),
			zap.Error(err))
	default:
		s.log.Debug("Join quest rejected",
			zap.Uint("user_id", userID),
			zap.Uint("quest_id", questID),
			zap.Stringer("outcome", result.Outcome))
	}
	return result
}

func (s *JoinService) join(ctx context.Context, userID, questID uint) (quest *models.Quest, participant *models.QuestParticipant, err error) {
	// The store has already rolled back by the time a panic reaches here
	defer func() {
		if r := recover(); r != nil {
			quest, participant = nil, nil
			err = fmt.Errorf("join quest %d: panic: %v", questID, r)
		}
	}()

	err = s.store.InTx(ctx, func(tx JoinTx) error {
		q, found, err := tx.LockQuest(questID)
		if err != nil {
			return fmt.Errorf("lock quest %d: %w", questID, err)
		}
		if !found {
			return errJoinNotFound
		}

		joined, err := tx.HasParticipant(userID, questID)
		if err != nil {
			return fmt.Errorf("check participant: %w", err)
		}
		if joined {
			return errJoinDuplicate
		}

		count, err := tx.CountParticipants(questID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if q.MaxParticipants != nil && count >= int64(*q.MaxParticipants) {
			return errJoinFull
		}

		p := &models.QuestParticipant{QuestID: questID, UserID: userID}
		if err := tx.InsertParticipant(p); err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}

		q.ParticipantCount = count + 1
		quest, participant = &q, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return quest, participant, nil
}

// classifyJoinError maps the transaction error to an outcome. A unique
// violation on (user_id, quest_id) is the database catching a duplicate the
// lock did not, so it counts as one.
func classifyJoinError(err error) JoinOutcome {
	switch {
	case err == nil:
		return JoinSucceeded
	case errors.Is(err, errJoinNotFound):
		return JoinNotFound
	case errors.Is(err, errJoinDuplicate), errors.Is(err, gorm.ErrDuplicatedKey):
		return JoinDuplicate
	case errors.Is(err, errJoinFull):
		return JoinFull
	default:
		return JoinError
	}
}
