package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Release the file handle before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestCreateTurn_AssignsIncreasingIDs(t *testing.T) {
	db := newRepoDB(t, &domain.ChatTurn{}, &domain.Attachment{})
	ctx := context.Background()

	first, err := CreateTurn(ctx, db, "u1", domain.RoleUser, "one", false)
	if err != nil {
		t.Fatalf("CreateTurn: %v", err)
	}
	second, err := CreateTurn(ctx, db, "u1", domain.RoleAssistant, "two", false)
	if err != nil {
		t.Fatalf("CreateTurn: %v", err)
	}
	if first.ID == 0 || second.ID <= first.ID {
		t.Fatalf("ids must be assigned and increasing: %d then %d", first.ID, second.ID)
	}
}

func TestListRecentTurns_WindowIsChronological(t *testing.T) {
	db := newRepoDB(t, &domain.ChatTurn{}, &domain.Attachment{})
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		if _, err := CreateTurn(ctx, db, "u1", domain.RoleUser, fmt.Sprintf("m%d", i), false); err != nil {
			t.Fatalf("CreateTurn: %v", err)
		}
	}

	window, err := ListRecentTurns(ctx, db, "u1", 4)
	if err != nil {
		t.Fatalf("ListRecentTurns: %v", err)
	}
	if len(window) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(window))
	}
	if window[0].Message != "m3" || window[3].Message != "m6" {
		t.Fatalf("window should keep the newest turns oldest-first: %q .. %q",
			window[0].Message, window[3].Message)
	}
}

func TestListRecentTurns_NoLimitReturnsAll(t *testing.T) {
	db := newRepoDB(t, &domain.ChatTurn{}, &domain.Attachment{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := CreateTurn(ctx, db, "u1", domain.RoleUser, "m", false); err != nil {
			t.Fatalf("CreateTurn: %v", err)
		}
	}
	all, err := ListRecentTurns(ctx, db, "u1", 0)
	if err != nil {
		t.Fatalf("ListRecentTurns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected full history, got %d", len(all))
	}
}

func TestGetTurn_ScopedToOwner(t *testing.T) {
	db := newRepoDB(t, &domain.ChatTurn{}, &domain.Attachment{})
	ctx := context.Background()

	turn, err := CreateTurn(ctx, db, "u1", domain.RoleUser, "mine", false)
	if err != nil {
		t.Fatalf("CreateTurn: %v", err)
	}

	got, err := GetTurn(ctx, db, "u1", turn.ID)
	if err != nil || got.Message != "mine" {
		t.Fatalf("GetTurn: %v, %+v", err, got)
	}

	if _, err := GetTurn(ctx, db, "u2", turn.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("foreign user must not see the turn, got %v", err)
	}
}

func TestListUserAttachments_OnlyUserTurns(t *testing.T) {
	db := newRepoDB(t, &domain.ChatTurn{}, &domain.Attachment{})
	ctx := context.Background()

	userTurn, err := CreateTurn(ctx, db, "u1", domain.RoleUser, "with file", true)
	if err != nil {
		t.Fatalf("CreateTurn: %v", err)
	}
	err = CreateAttachments(ctx, db, userTurn.ID, []domain.Attachment{
		{StoredName: "a.pdf", OriginalName: "resume.pdf", StoragePath: "/up/a.pdf", Kind: "pdf", SizeBytes: 10, MimeType: "application/pdf"},
	})
	if err != nil {
		t.Fatalf("CreateAttachments: %v", err)
	}

	// Someone else's files never bleed in.
	otherTurn, err := CreateTurn(ctx, db, "u2", domain.RoleUser, "other", true)
	if err != nil {
		t.Fatalf("CreateTurn: %v", err)
	}
	err = CreateAttachments(ctx, db, otherTurn.ID, []domain.Attachment{
		{StoredName: "b.png", OriginalName: "b.png", StoragePath: "/up/b.png", Kind: "image", SizeBytes: 5, MimeType: "image/png"},
	})
	if err != nil {
		t.Fatalf("CreateAttachments: %v", err)
	}

	files, err := ListUserAttachments(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListUserAttachments: %v", err)
	}
	if len(files) != 1 || files[0].OriginalName != "resume.pdf" {
		t.Fatalf("unexpected attachments: %+v", files)
	}
}
