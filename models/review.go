// models/review.go
package models

import "time"

// Review is a participant's rating of a quest they completed
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	QuestID   uint      `json:"quest_id" gorm:"not null;uniqueIndex:idx_quest_reviews_user_quest,priority:2;index"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_quest_reviews_user_quest,priority:1"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (Review) TableName() string {
	return "quest_reviews"
}
