// Package services – PromptService
//
// This file implements operator management of prompt templates: CRUD plus
// the activation swap that keeps at most one template active per category.
// The swap itself runs inside a repository transaction; the service layer
// validates payloads and translates repository errors into sentinels.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/repo"
)

// PromptInput is the create/update payload for a prompt template.
type PromptInput struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// PromptService manages the prompt template registry.
type PromptService struct {
	DB *gorm.DB
}

// Create validates and inserts a template. Activating it on creation
// deactivates every other template in the same category atomically.
func (s *PromptService) Create(ctx context.Context, in PromptInput, createdBy *string) (*domain.PromptTemplate, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" || body == "" {
		return nil, ErrInvalidPrompt
	}
	category := in.Category
	if category == "" {
		category = domain.PromptCategoryChat
	}
	if !validCategory(category) {
		return nil, ErrInvalidPrompt
	}

	t := &domain.PromptTemplate{
		Title:     title,
		Body:      body,
		Category:  category,
		CreatedBy: createdBy,
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if err := repo.CreatePromptTemplate(ctx, s.DB, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get fetches one template by id.
func (s *PromptService) Get(ctx context.Context, id uint) (*domain.PromptTemplate, error) {
	t, err := repo.GetPromptTemplate(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns templates, optionally filtered by category.
func (s *PromptService) List(ctx context.Context, category string) ([]domain.PromptTemplate, error) {
	if category != "" && !validCategory(category) {
		return nil, ErrInvalidPrompt
	}
	return repo.ListPromptTemplates(ctx, s.DB, category)
}

// Update applies a partial update. Empty strings leave the stored field
// untouched; setting IsActive=true triggers the category swap.
func (s *PromptService) Update(ctx context.Context, id uint, in PromptInput, updatedBy *string) (*domain.PromptTemplate, error) {
	updates := map[string]any{}
	if t := strings.TrimSpace(in.Title); t != "" {
		updates["title"] = t
	}
	if b := strings.TrimSpace(in.Body); b != "" {
		updates["body"] = b
	}
	if in.Category != "" {
		if !validCategory(in.Category) {
			return nil, ErrInvalidPrompt
		}
		updates["category"] = in.Category
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if updatedBy != nil {
		updates["updated_by"] = *updatedBy
	}

	t, err := repo.UpdatePromptTemplate(ctx, s.DB, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	return t, nil
}

// Activate makes the template the single active one in its category.
func (s *PromptService) Activate(ctx context.Context, id uint, updatedBy *string) (*domain.PromptTemplate, error) {
	t, err := repo.ActivatePromptTemplate(ctx, s.DB, id, updatedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	return t, nil
}

// Delete removes a template.
func (s *PromptService) Delete(ctx context.Context, id uint) error {
	if err := repo.DeletePromptTemplate(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPromptNotFound
		}
		return err
	}
	return nil
}

// Active returns the active template for a category, or ErrPromptNotFound
// when none is active.
func (s *PromptService) Active(ctx context.Context, category string) (*domain.PromptTemplate, error) {
	if category == "" {
		category = domain.PromptCategoryChat
	}
	if !validCategory(category) {
		return nil, ErrInvalidPrompt
	}
	t, err := repo.GetActivePromptTemplate(ctx, s.DB, category)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromptNotFound
		}
		return nil, err
	}
	return t, nil
}

func validCategory(c string) bool {
	switch c {
	case domain.PromptCategoryChat, domain.PromptCategorySkill,
		domain.PromptCategorySystem, domain.PromptCategoryOther:
		return true
	}
	return false
}
