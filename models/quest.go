// models/quest.go - Quest Board Data Models
package models

import (
	"time"
)

// Quest status constants
type QuestStatus string

const (
	QuestStatusOpen     QuestStatus = "open"
	QuestStatusClosed   QuestStatus = "closed"
	QuestStatusArchived QuestStatus = "archived"
)

// Valid reports whether s is one of the known statuses
func (s QuestStatus) Valid() bool {
	switch s {
	case QuestStatusOpen, QuestStatusClosed, QuestStatusArchived:
		return true
	}
	return false
}

// Quest is a task posted on the board. A nil MaxParticipants means unlimited
// capacity; zero means nobody can join.
type Quest struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	Title           string             `json:"title" gorm:"not null;size:200"`
	Description     string             `json:"description" gorm:"type:text"`
	Category        string             `json:"category" gorm:"size:50;index"`
	RewardPoints    int                `json:"reward_points" gorm:"not null;default:0"`
	Status          QuestStatus        `json:"status" gorm:"not null;default:'open';size:20;index"`
	MaxParticipants *int               `json:"max_participants"`
	Deadline        *time.Time         `json:"deadline"`
	CreatedBy       uint               `json:"created_by" gorm:"not null;index"`
	Creator         *User              `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	Participants    []QuestParticipant `json:"participants,omitempty" gorm:"foreignKey:QuestID"`

	// Filled only by queries that select it explicitly
	ParticipantCount int64 `json:"participant_count" gorm:"->;-:migration"`
}

// QuestParticipant records a user's membership in a quest. Rows are only
// ever inserted by the join transaction.
type QuestParticipant struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	QuestID     uint       `json:"quest_id" gorm:"not null;uniqueIndex:idx_quest_participants_user_quest,priority:2;index"`
	Quest       *Quest     `json:"quest,omitempty" gorm:"foreignKey:QuestID"`
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_quest_participants_user_quest,priority:1"`
	User        *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	JoinedAt    time.Time  `json:"joined_at" gorm:"not null;autoCreateTime"`
	CompletedAt *time.Time `json:"completed_at"`
	ClearedAt   *time.Time `json:"cleared_at"`
}

func (Quest) TableName() string {
	return "quests"
}

func (QuestParticipant) TableName() string {
	return "quest_participants"
}
