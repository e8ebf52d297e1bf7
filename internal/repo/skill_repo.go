// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the queries the skill-score notifier
// runs and persistence for notifications.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

// ListLowSkills returns every user-skill row scoring strictly below
// threshold, with the skill preloaded for its name.
func ListLowSkills(ctx context.Context, db *gorm.DB, threshold int) ([]domain.UserSkill, error) {
	var out []domain.UserSkill
	err := db.WithContext(ctx).
		Preload("Skill").
		Where("skill_score < ?", threshold).
		Order("user_id ASC, skill_score ASC").
		Find(&out).Error
	return out, err
}

// CreateNotification inserts a notification row.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	n.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(n).Error
}

// ListNotifications returns a user's targeted notifications plus broadcasts,
// most recent first.
func ListNotifications(ctx context.Context, db *gorm.DB, userID string) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Where("user_id = ? OR target_all = ?", userID, true).
		Order("id DESC").
		Find(&out).Error
	return out, err
}

// MarkNotificationRead flips is_read on a user's targeted notification.
// Returns ErrNotFound when the row does not exist or is not addressed to
// the user.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, id uint, userID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
