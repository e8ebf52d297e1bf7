// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for chat turns
// and their file attachments.
//
// Ordering: a user's conversation is ordered by the auto-incremented turn
// ID. All listing functions order by id ASC so insertion order is returned
// as causal order.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

// CreateTurn inserts a new chat turn row.
func CreateTurn(ctx context.Context, db *gorm.DB, userID, role, message string, hasAttachments bool) (*domain.ChatTurn, error) {
	t := &domain.ChatTurn{
		UserID:         userID,
		Role:           role,
		Message:        message,
		HasAttachments: hasAttachments,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// CreateAttachments inserts attachment rows owned by turnID. It is a no-op
// for an empty slice. Callers are expected to run this in the same
// transaction that created the turn.
func CreateAttachments(ctx context.Context, db *gorm.DB, turnID uint, files []domain.Attachment) error {
	if len(files) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range files {
		files[i].ID = 0
		files[i].ChatTurnID = turnID
		files[i].CreatedAt = now
	}
	return db.WithContext(ctx).Create(&files).Error
}

// ListTurns returns the full conversation for userID in insertion order,
// with attachments eagerly loaded.
func ListTurns(ctx context.Context, db *gorm.DB, userID string) ([]domain.ChatTurn, error) {
	var out []domain.ChatTurn
	err := db.WithContext(ctx).
		Preload("Attachments").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListRecentTurns returns the most recent `limit` turns for userID in
// ascending insertion order (oldest of the window first), with attachments
// eagerly loaded. A limit <= 0 returns the whole history.
func ListRecentTurns(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.ChatTurn, error) {
	if limit <= 0 {
		return ListTurns(ctx, db, userID)
	}
	var out []domain.ChatTurn
	err := db.WithContext(ctx).
		Preload("Attachments").
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	// Flip the window back to chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// GetTurn returns one of userID's turns by id, with attachments loaded.
// Returns ErrNotFound when the turn does not exist or belongs to another
// user.
func GetTurn(ctx context.Context, db *gorm.DB, userID string, id uint) (*domain.ChatTurn, error) {
	var t domain.ChatTurn
	err := db.WithContext(ctx).
		Preload("Attachments").
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CountTurns returns the number of turns in userID's conversation.
func CountTurns(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ChatTurn{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListUserAttachments returns every attachment the user has ever uploaded,
// across all of their turns, most recent first. Only user-authored turns
// carry uploads; assistant turns never do.
func ListUserAttachments(ctx context.Context, db *gorm.DB, userID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	err := db.WithContext(ctx).
		Joins("JOIN chat_turns ON chat_turns.id = attachments.chat_turn_id").
		Where("chat_turns.user_id = ? AND chat_turns.role = ?", userID, domain.RoleUser).
		Order("attachments.id DESC").
		Find(&out).Error
	return out, err
}
