package repository

import (
	"context"
	"errors"

	"github.com/escrowhq/escrow_bot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertUser creates the user on first contact and refreshes the display
// fields and last-seen timestamp on every subsequent interaction.
func (r *Repository) UpsertUser(ctx context.Context, user *models.User) error {
	return r.withRetry(ctx, "upsert user", func() error {
		return r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"first_name", "username", "last_seen"}),
			}).
			Create(user).Error
	})
}

func (r *Repository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.withRetry(ctx, "get user", func() error {
		return r.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every user except excludeID, ordered by first name. Used
// for the admin watch keyboard and broadcast fan-out.
func (r *Repository) ListUsers(ctx context.Context, excludeID int64) ([]models.User, error) {
	var users []models.User
	err := r.withRetry(ctx, "list users", func() error {
		return r.db.WithContext(ctx).
			Where("user_id != ?", excludeID).
			Order("first_name ASC").
			Find(&users).Error
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
