// Chat HTTP handlers.
//
// This file exposes the conversational endpoints:
//   - GET  /chat   (full history, seeds a greeting for new users)
//   - POST /chat   (submit a turn, returns the assistant reply)
//
// POST /chat honors the Idempotency-Key header: a replayed key returns the
// previously persisted assistant turn without re-invoking the model.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/ai"
	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/http/middleware"
	"github.com/coderbhiya/careerai-be/internal/repo"
	"github.com/coderbhiya/careerai-be/internal/services"
)

//
// Service contracts (context-aware)
//

// ChatEngine defines the turn pipeline operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the provided
// context.
type ChatEngine interface {
	// History returns the user's conversation in insertion order.
	History(ctx context.Context, userID string) ([]domain.ChatTurn, error)
	// SubmitTurn persists the user's message and returns the assistant turn.
	SubmitTurn(ctx context.Context, userID, message string, uploads []services.AttachmentUpload) (*domain.ChatTurn, error)
}

// ReviewAPI defines the survey operations consumed by HTTP handlers.
type ReviewAPI interface {
	Questions(ctx context.Context, activeOnly bool) ([]domain.ReviewQuestion, error)
	Submit(ctx context.Context, userID string, answers []services.SubmittedAnswer, comment string) (uint, error)
	Stats(ctx context.Context) ([]services.QuestionStats, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Review, int64, error)
	CreateQuestion(ctx context.Context, in services.QuestionInput) (*domain.ReviewQuestion, error)
	UpdateQuestion(ctx context.Context, id uint, in services.QuestionInput) (*domain.ReviewQuestion, error)
}

// PromptAPI defines prompt template management operations.
type PromptAPI interface {
	Create(ctx context.Context, in services.PromptInput, createdBy *string) (*domain.PromptTemplate, error)
	Get(ctx context.Context, id uint) (*domain.PromptTemplate, error)
	List(ctx context.Context, category string) ([]domain.PromptTemplate, error)
	Update(ctx context.Context, id uint, in services.PromptInput, updatedBy *string) (*domain.PromptTemplate, error)
	Activate(ctx context.Context, id uint, updatedBy *string) (*domain.PromptTemplate, error)
	Delete(ctx context.Context, id uint) error
	Active(ctx context.Context, category string) (*domain.PromptTemplate, error)
}

// NotifyAPI defines the notification surface.
type NotifyAPI interface {
	LowSkillSweep(ctx context.Context) (int, error)
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uint, userID string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for chat, reviews, prompts, and
// notifications. The *gorm.DB handle is used only for idempotency record
// bookkeeping; all business logic lives behind the service interfaces.
type Handlers struct {
	chat    ChatEngine
	reviews ReviewAPI
	prompts PromptAPI
	notify  NotifyAPI

	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(chat ChatEngine, reviews ReviewAPI, prompts PromptAPI, notify NotifyAPI, db *gorm.DB, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{
		chat:    chat,
		reviews: reviews,
		prompts: prompts,
		notify:  notify,
		db:      db,
		idemTTL: idemTTL,
	}
}

// userID extracts the authenticated user id from the Gin context (set by
// upstream middleware), falling back to the X-User-ID header and finally to
// "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// SubmitTurnRequest is the JSON payload for posting a chat message.
type SubmitTurnRequest struct {
	// Message is the user's text (required, trimmed server-side).
	Message string `json:"message" example:"How do I move from QA into backend development?"`
	// Attachments carries metadata of files uploaded alongside the message.
	Attachments []services.AttachmentUpload `json:"attachments,omitempty"`
}

// TurnResponse is a single conversation turn as returned by the API.
type TurnResponse struct {
	ID             uint                `json:"id"`
	Role           string              `json:"role" example:"assistant"`
	Message        string              `json:"message"`
	HasAttachments bool                `json:"has_attachments"`
	Attachments    []domain.Attachment `json:"attachments,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Replayed       bool                `json:"replayed,omitempty"`
}

// HistoryResponse wraps the user's full conversation.
type HistoryResponse struct {
	Messages []TurnResponse `json:"messages"`
}

func toTurnResponse(t *domain.ChatTurn) TurnResponse {
	return TurnResponse{
		ID:             t.ID,
		Role:           t.Role,
		Message:        t.Message,
		HasAttachments: t.HasAttachments,
		Attachments:    t.Attachments,
		CreatedAt:      t.CreatedAt,
	}
}

//
// Handlers
//

// GetChat godoc
// @ID          getChat
// @Summary     Get conversation history
// @Description Returns the user's full conversation in order. New users receive a seeded greeting.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat [get]
func (h *Handlers) GetChat(c *gin.Context) {
	turns, err := h.chat.History(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	out := make([]TurnResponse, 0, len(turns))
	for i := range turns {
		out = append(out, toTurnResponse(&turns[i]))
	}
	ok(c, http.StatusOK, HistoryResponse{Messages: out})
}

// PostChat godoc
// @ID          postChat
// @Summary     Submit a chat message
// @Description Persists the user's turn and returns the generated assistant reply. Supports Idempotency-Key replays.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Deduplicates retried submissions"
// @Param       body             body    handlers.SubmitTurnRequest  true  "Message payload"
//
// @Success     201  {object}  handlers.TurnResponse
// @Success     200  {object}  handlers.TurnResponse  "Idempotent replay"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse "No active prompt template"
// @Failure     502  {object}  handlers.ErrorResponse "Completion gateway failure"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /chat [post]
func (h *Handlers) PostChat(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// Serve replays from the stored turn; fall through to normal processing
	// when the record cannot be resolved.
	if middleware.IsReplay(c) {
		if key, has := middleware.GetIdempotencyKey(c); has {
			if turn := h.replayedTurn(ctx, uid, key); turn != nil {
				resp := toTurnResponse(turn)
				resp.Replayed = true
				ok(c, http.StatusOK, resp)
				return
			}
		}
	}

	var req SubmitTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	turn, err := h.chat.SubmitTurn(ctx, uid, req.Message, req.Attachments)
	if err != nil {
		h.failTurn(c, err)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has {
		if _, err := repo.CreateIdempotency(ctx, h.db, uid, key, turn.ID, http.StatusCreated, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not saved")
		}
	}

	ok(c, http.StatusCreated, toTurnResponse(turn))
}

// replayedTurn resolves the assistant turn recorded for (userID, key), or
// nil when the record or turn is gone.
func (h *Handlers) replayedTurn(ctx context.Context, uid, key string) *domain.ChatTurn {
	rec, err := repo.GetIdempotency(ctx, h.db, uid, key, time.Now().UTC())
	if err != nil {
		return nil
	}
	turn, err := repo.GetTurn(ctx, h.db, uid, rec.TurnID)
	if err != nil {
		return nil
	}
	return turn
}

// failTurn maps turn pipeline errors onto HTTP responses.
func (h *Handlers) failTurn(c *gin.Context, err error) {
	var gwErr *ai.GatewayError
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message is required")
	case errors.Is(err, services.ErrMessageTooLong):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message too long")
	case errors.Is(err, services.ErrNoActivePrompt):
		fail(c, http.StatusConflict, ErrCodeNoActivePrompt, "no active prompt template configured")
	case errors.As(err, &gwErr):
		fail(c, http.StatusBadGateway, ErrCodeGatewayFailed, "completion gateway failed")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
