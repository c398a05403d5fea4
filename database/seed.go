// database/seed.go - Demo data loader
package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"questboard/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile is the YAML layout accepted by `questboard seed`.
// Participants are never seeded: memberships only come from joining.
type SeedFile struct {
	Users  []SeedUser  `yaml:"users"`
	Quests []SeedQuest `yaml:"quests"`
}

type SeedUser struct {
	Email       string      `yaml:"email"`
	DisplayName string      `yaml:"display_name"`
	Password    string      `yaml:"password"`
	Role        models.Role `yaml:"role"`
}

type SeedQuest struct {
	Title           string             `yaml:"title"`
	Description     string             `yaml:"description"`
	Category        string             `yaml:"category"`
	RewardPoints    int                `yaml:"reward_points"`
	Status          models.QuestStatus `yaml:"status"`
	MaxParticipants *int               `yaml:"max_participants"`
	CreatedBy       string             `yaml:"created_by"` // user email
}

// LoadSeedFile reads and parses a seed file from disk
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data and checks references between entries
func ParseSeed(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	emails := make(map[string]bool, len(seed.Users))
	for i, u := range seed.Users {
		if u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %d: email and password are required", i)
		}
		if u.Role == "" {
			seed.Users[i].Role = models.RoleMember
		} else if !u.Role.Valid() {
			return nil, fmt.Errorf("seed user %q: unknown role %q", u.Email, u.Role)
		}
		emails[strings.ToLower(u.Email)] = true
	}

	for i, q := range seed.Quests {
		if q.Title == "" {
			return nil, fmt.Errorf("seed quest %d: title is required", i)
		}
		if !emails[strings.ToLower(q.CreatedBy)] {
			return nil, fmt.Errorf("seed quest %q: unknown creator %q", q.Title, q.CreatedBy)
		}
		if q.MaxParticipants != nil && *q.MaxParticipants < 0 {
			return nil, fmt.Errorf("seed quest %q: max_participants must not be negative", q.Title)
		}
		if q.Status == "" {
			seed.Quests[i].Status = models.QuestStatusOpen
		} else if !q.Status.Valid() {
			return nil, fmt.Errorf("seed quest %q: unknown status %q", q.Title, q.Status)
		}
	}

	return &seed, nil
}

// Seed inserts users and quests that do not exist yet. Users are matched by
// email and quests by title and creator, so running it twice is harmless.
func Seed(ctx context.Context, db *gorm.DB, seed *SeedFile, log *zap.Logger) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userIDs := make(map[string]uint, len(seed.Users))

		for _, su := range seed.Users {
			email := strings.ToLower(su.Email)

			var user models.User
			err := tx.Where("email = ?", email).Take(&user).Error
			switch {
			case err == nil:
				log.Debug("Seed user exists", zap.String("email", email))
			case errors.Is(err, gorm.ErrRecordNotFound):
				hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
				if err != nil {
					return fmt.Errorf("hash password for %s: %w", email, err)
				}
				user = models.User{
					UID:          uuid.NewString(),
					Email:        email,
					DisplayName:  su.DisplayName,
					PasswordHash: string(hash),
					Role:         su.Role,
				}
				if err := tx.Create(&user).Error; err != nil {
					return fmt.Errorf("create user %s: %w", email, err)
				}
				log.Info("Seeded user", zap.String("email", email), zap.Uint("id", user.ID))
			default:
				return err
			}
			userIDs[email] = user.ID
		}

		for _, sq := range seed.Quests {
			creatorID := userIDs[strings.ToLower(sq.CreatedBy)]

			var count int64
			if err := tx.Model(&models.Quest{}).
				Where("title = ? AND created_by = ?", sq.Title, creatorID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			quest := models.Quest{
				Title:           sq.Title,
				Description:     sq.Description,
				Category:        sq.Category,
				RewardPoints:    sq.RewardPoints,
				Status:          sq.Status,
				MaxParticipants: sq.MaxParticipants,
				CreatedBy:       creatorID,
			}
			if err := tx.Create(&quest).Error; err != nil {
				return fmt.Errorf("create quest %q: %w", sq.Title, err)
			}
			log.Info("Seeded quest", zap.String("title", quest.Title), zap.Uint("id", quest.ID))
		}

		return nil
	})
}
