package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

func TestActivatePromptTemplate_Swap(t *testing.T) {
	db := newRepoDB(t, &domain.PromptTemplate{})
	ctx := context.Background()

	a := &domain.PromptTemplate{Title: "a", Body: "b", Category: domain.PromptCategoryChat, IsActive: true}
	if err := CreatePromptTemplate(ctx, db, a); err != nil {
		t.Fatalf("create a: %v", err)
	}
	b := &domain.PromptTemplate{Title: "b", Body: "b", Category: domain.PromptCategoryChat}
	if err := CreatePromptTemplate(ctx, db, b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	got, err := ActivatePromptTemplate(ctx, db, b.ID, nil)
	if err != nil {
		t.Fatalf("ActivatePromptTemplate: %v", err)
	}
	if !got.IsActive {
		t.Fatalf("template b should be active")
	}

	var count int64
	err = db.Model(&domain.PromptTemplate{}).
		Where("category = ? AND is_active = ?", domain.PromptCategoryChat, true).
		Count(&count).Error
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("exactly one active template per category, got %d", count)
	}

	active, err := GetActivePromptTemplate(ctx, db, domain.PromptCategoryChat)
	if err != nil {
		t.Fatalf("GetActivePromptTemplate: %v", err)
	}
	if active.ID != b.ID {
		t.Fatalf("resolved %d, want %d", active.ID, b.ID)
	}
}

func TestActivatePromptTemplate_NotFound(t *testing.T) {
	db := newRepoDB(t, &domain.PromptTemplate{})
	if _, err := ActivatePromptTemplate(context.Background(), db, 42, nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestGetActivePromptTemplate_NoneActive(t *testing.T) {
	db := newRepoDB(t, &domain.PromptTemplate{})
	ctx := context.Background()

	tpl := &domain.PromptTemplate{Title: "t", Body: "b", Category: domain.PromptCategoryChat}
	if err := CreatePromptTemplate(ctx, db, tpl); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := GetActivePromptTemplate(ctx, db, domain.PromptCategoryChat); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletePromptTemplate(t *testing.T) {
	db := newRepoDB(t, &domain.PromptTemplate{})
	ctx := context.Background()

	tpl := &domain.PromptTemplate{Title: "t", Body: "b", Category: domain.PromptCategoryChat}
	if err := CreatePromptTemplate(ctx, db, tpl); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := DeletePromptTemplate(ctx, db, tpl.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeletePromptTemplate(ctx, db, tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}
