// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for prompt
// templates, including the single-active-per-category activation swap.
//
// Error semantics:
//   - When a template is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

// CreatePromptTemplate inserts a template. When isActive is set, every other
// template in the same category is deactivated inside the same transaction
// so the single-active invariant holds from the moment of creation.
func CreatePromptTemplate(ctx context.Context, db *gorm.DB, t *domain.PromptTemplate) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if !t.IsActive {
		return db.WithContext(ctx).Create(t).Error
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.PromptTemplate{}).
			Where("category = ?", t.Category).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

// GetPromptTemplate fetches a template by ID, or ErrNotFound.
func GetPromptTemplate(ctx context.Context, db *gorm.DB, id uint) (*domain.PromptTemplate, error) {
	var t domain.PromptTemplate
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListPromptTemplates returns templates ordered by last update, most recent
// first. An empty category returns all categories.
func ListPromptTemplates(ctx context.Context, db *gorm.DB, category string) ([]domain.PromptTemplate, error) {
	q := db.WithContext(ctx).Order("updated_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []domain.PromptTemplate
	err := q.Find(&out).Error
	return out, err
}

// UpdatePromptTemplate applies the given column updates to a template. When
// the updates activate it, others in the target category are deactivated in
// the same transaction. Returns ErrNotFound when no row matches.
func UpdatePromptTemplate(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) (*domain.PromptTemplate, error) {
	updates["updated_at"] = time.Now().UTC()

	var out *domain.PromptTemplate
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.PromptTemplate
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		if act, ok := updates["is_active"].(bool); ok && act {
			category := t.Category
			if c, ok := updates["category"].(string); ok && c != "" {
				category = c
			}
			if err := tx.Model(&domain.PromptTemplate{}).
				Where("category = ? AND id <> ?", category, id).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&t).Updates(updates).Error; err != nil {
			return err
		}
		out = &t
		return nil
	})
	return out, err
}

// ActivatePromptTemplate performs the atomic swap: deactivate every template
// in the target's category, then activate the target. The transaction plus
// the partial unique index on (category) WHERE is_active guarantees exactly
// one winner under concurrent activations.
func ActivatePromptTemplate(ctx context.Context, db *gorm.DB, id uint, updatedBy *string) (*domain.PromptTemplate, error) {
	var out *domain.PromptTemplate
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.PromptTemplate
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.PromptTemplate{}).
			Where("category = ? AND id <> ?", t.Category, id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		updates := map[string]any{
			"is_active":  true,
			"updated_at": time.Now().UTC(),
		}
		if updatedBy != nil {
			updates["updated_by"] = *updatedBy
		}
		if err := tx.Model(&t).Updates(updates).Error; err != nil {
			return err
		}
		out = &t
		return nil
	})
	return out, err
}

// DeletePromptTemplate removes a template. Returns ErrNotFound when no row
// was deleted.
func DeletePromptTemplate(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.PromptTemplate{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetActivePromptTemplate returns the active template for a category, or
// ErrNotFound when none is active. The most recently updated row wins should
// the invariant ever be violated by out-of-band writes.
func GetActivePromptTemplate(ctx context.Context, db *gorm.DB, category string) (*domain.PromptTemplate, error) {
	var t domain.PromptTemplate
	err := db.WithContext(ctx).
		Where("category = ? AND is_active = ?", category, true).
		Order("updated_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}
