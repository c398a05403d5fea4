package services

import (
	"context"
	"errors"

	"questboard/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JoinStore runs a unit of work in a transaction. The transaction commits
// when fn returns nil and rolls back on an error or a panic.
type JoinStore interface {
	InTx(ctx context.Context, fn func(tx JoinTx) error) error
}

// JoinTx is the set of queries the join transaction needs
type JoinTx interface {
	// LockQuest reads the quest and holds an exclusive row lock on it until
	// the transaction ends. found is false when no quest has that id.
	LockQuest(questID uint) (quest models.Quest, found bool, err error)
	HasParticipant(userID, questID uint) (bool, error)
	CountParticipants(questID uint) (int64, error)
	InsertParticipant(p *models.QuestParticipant) error
}

// GormJoinStore is the production JoinStore
type GormJoinStore struct {
	db *gorm.DB
}

func NewGormJoinStore(db *gorm.DB) *GormJoinStore {
	return &GormJoinStore{db: db}
}

func (s *GormJoinStore) InTx(ctx context.Context, fn func(tx JoinTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormJoinTx{tx: tx})
	})
}

type gormJoinTx struct {
	tx *gorm.DB
}

func (t *gormJoinTx) LockQuest(questID uint) (models.Quest, bool, error) {
	var quest models.Quest
	err := forUpdate(t.tx).Where("id = ?", questID).Take(&quest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return quest, false, nil
	}
	if err != nil {
		return quest, false, err
	}
	return quest, true, nil
}

func (t *gormJoinTx) HasParticipant(userID, questID uint) (bool, error) {
	var count int64
	err := t.tx.Model(&models.QuestParticipant{}).
		Where("user_id = ? AND quest_id = ?", userID, questID).
		Count(&count).Error
	return count > 0, err
}

func (t *gormJoinTx) CountParticipants(questID uint) (int64, error) {
	var count int64
	err := t.tx.Model(&models.QuestParticipant{}).
		Where("quest_id = ?", questID).
		Count(&count).Error
	return count, err
}

func (t *gormJoinTx) InsertParticipant(p *models.QuestParticipant) error {
	return t.tx.Create(p).Error
}

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks; it
// serializes writers for the whole database instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
