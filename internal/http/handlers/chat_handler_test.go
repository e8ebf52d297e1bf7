package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coderbhiya/careerai-be/internal/ai"
	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/http/middleware"
	"github.com/coderbhiya/careerai-be/internal/repo"
	"github.com/coderbhiya/careerai-be/internal/services"
)

type stubGateway struct {
	reply string
	calls int
}

func (g *stubGateway) Complete(ctx context.Context, prompt string, files []ai.FileRef) (string, error) {
	g.calls++
	return g.reply, nil
}

func newHandlerEnv(t *testing.T, activePrompt bool) (*gin.Engine, *gorm.DB, *stubGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:chat_handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.ChatTurn{}, &domain.Attachment{}, &domain.PromptTemplate{},
		&domain.ReviewQuestion{}, &domain.Review{}, &domain.ReviewAnswer{},
		&domain.Idempotency{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	if activePrompt {
		tpl := domain.PromptTemplate{
			Title: "mentor", Body: "{{history}} {{message}} {{files}}",
			Category: domain.PromptCategoryChat, IsActive: true,
		}
		if err := db.Create(&tpl).Error; err != nil {
			t.Fatalf("seed prompt: %v", err)
		}
	}

	gw := &stubGateway{reply: "model reply"}
	chatSvc := services.NewChatService(db, gw)
	reviewSvc := &services.ReviewService{DB: db}
	promptSvc := &services.PromptService{DB: db}
	h := New(chatSvc, reviewSvc, promptSvc, nil, db, time.Hour)

	r := gin.New()
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{},
		func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))
	r.GET("/chat", h.GetChat)
	r.POST("/chat", h.PostChat)
	r.POST("/reviews", h.SubmitReview)
	return r, db, gw
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetChat_SeedsGreeting(t *testing.T) {
	r, _, _ := newHandlerEnv(t, true)

	w := doJSON(t, r, http.MethodGet, "/chat", nil, map[string]string{"X-User-ID": "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Role != domain.RoleAssistant {
		t.Fatalf("expected one greeting turn, got %+v", resp.Messages)
	}
}

func TestPostChat_CreatesTurn(t *testing.T) {
	r, db, gw := newHandlerEnv(t, true)

	// Warm conversation so the gateway actually runs.
	if _, err := repo.CreateTurn(context.Background(), db, "u1", domain.RoleAssistant, "greeting", false); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/chat",
		SubmitTurnRequest{Message: "what next?"},
		map[string]string{"X-User-ID": "u1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp TurnResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Role != domain.RoleAssistant || resp.Message != "model reply" {
		t.Fatalf("unexpected turn: %+v", resp)
	}
	if gw.calls != 1 {
		t.Fatalf("gateway calls = %d", gw.calls)
	}
}

func TestPostChat_NoActivePrompt(t *testing.T) {
	r, _, _ := newHandlerEnv(t, false)

	w := doJSON(t, r, http.MethodPost, "/chat",
		SubmitTurnRequest{Message: "hi"},
		map[string]string{"X-User-ID": "u1"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeNoActivePrompt {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestPostChat_BadJSON(t *testing.T) {
	r, _, _ := newHandlerEnv(t, true)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString("{nope"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestPostChat_IdempotentReplay(t *testing.T) {
	r, db, gw := newHandlerEnv(t, true)
	headers := map[string]string{
		"X-User-ID":       "u1",
		"Idempotency-Key": "retry-123",
	}

	if _, err := repo.CreateTurn(context.Background(), db, "u1", domain.RoleAssistant, "greeting", false); err != nil {
		t.Fatalf("seed: %v", err)
	}

	first := doJSON(t, r, http.MethodPost, "/chat", SubmitTurnRequest{Message: "once"}, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, body %s", first.Code, first.Body.String())
	}
	var created TurnResponse
	if err := json.Unmarshal(first.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	second := doJSON(t, r, http.MethodPost, "/chat", SubmitTurnRequest{Message: "once"}, headers)
	if second.Code != http.StatusOK {
		t.Fatalf("replay status = %d, body %s", second.Code, second.Body.String())
	}
	var replayed TurnResponse
	if err := json.Unmarshal(second.Body.Bytes(), &replayed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !replayed.Replayed || replayed.ID != created.ID {
		t.Fatalf("expected replay of turn %d, got %+v", created.ID, replayed)
	}
	if gw.calls != 1 {
		t.Fatalf("gateway must not run again on replay, calls = %d", gw.calls)
	}
}

func TestSubmitReview_ValidationFailureNames(t *testing.T) {
	r, db, _ := newHandlerEnv(t, true)

	q := domain.ReviewQuestion{Text: "Overall?", Kind: domain.KindLikert, IsActive: true}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("seed question: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/reviews",
		SubmitReviewRequest{Answers: []services.SubmittedAnswer{
			{QuestionID: q.ID, Value: "not-a-token"},
		}},
		map[string]string{"X-User-ID": "u1"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != ErrCodeValidationFailed {
		t.Fatalf("code = %q", resp.Code)
	}
}
