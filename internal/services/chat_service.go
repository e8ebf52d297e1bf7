// Package services – ChatService
//
// This file implements ChatService, the orchestrator of a chat turn. It
// loads the active prompt template, persists the inbound user turn with its
// attachments, reconstructs the bounded conversation window plus the user's
// full file inventory, composes the final prompt, invokes the completion
// gateway, and persists the assistant reply.
//
// Write policy: the user's turn commits in its own transaction before the
// gateway is called, so a gateway failure never erases the user's message.
// The assistant turn is a separate write; its failure surfaces as a
// retryable error to the caller.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// the user identifier.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coderbhiya/careerai-be/internal/ai"
	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/prompt"
	"github.com/coderbhiya/careerai-be/internal/repo"
)

// defaultGreeting seeds a brand-new conversation without spending a
// completion call.
const defaultGreeting = "Hey! I'm your career mentor. Tell me a bit about " +
	"yourself — what are you studying or working on right now?"

// AttachmentUpload carries the metadata of one file uploaded with a turn.
// The file bytes are stored by the upload pipeline; the chat engine only
// records and references metadata.
type AttachmentUpload struct {
	StoredName   string `json:"fileName"`
	OriginalName string `json:"originalName"`
	StoragePath  string `json:"filePath"`
	Kind         string `json:"fileType"`
	SizeBytes    int64  `json:"fileSize"`
	MimeType     string `json:"mimeType"`
}

// ChatService coordinates turn persistence, context assembly, prompt
// composition, and the gateway call.
type ChatService struct {
	DB      *gorm.DB
	Gateway ai.Gateway

	// PromptCategory selects which template category drives the chat.
	PromptCategory string
	// HistoryWindow bounds how many recent turns ground the next reply.
	HistoryWindow int
	// MaxMessageRunes caps inbound messages by rune length (0 = unlimited).
	MaxMessageRunes int
	// PublicBaseURL is stripped from stored attachment paths before they are
	// handed to the gateway.
	PublicBaseURL string
	// Greeting is the fixed assistant line seeding a new conversation.
	Greeting string
}

// NewChatService constructs a ChatService with the defaults the rest of the
// application expects.
func NewChatService(db *gorm.DB, gw ai.Gateway) *ChatService {
	return &ChatService{
		DB:              db,
		Gateway:         gw,
		PromptCategory:  domain.PromptCategoryChat,
		HistoryWindow:   20,
		MaxMessageRunes: 4000,
		Greeting:        defaultGreeting,
	}
}

// History returns the user's full conversation in insertion order. A brand
// new user gets a seeded greeting turn; the gateway is not called.
func (s *ChatService) History(ctx context.Context, userID string) ([]domain.ChatTurn, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "History",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	turns, err := repo.ListTurns(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	if len(turns) > 0 {
		return turns, nil
	}

	seed, err := repo.CreateTurn(ctx, s.DB, userID, domain.RoleAssistant, s.greeting(), false)
	if err != nil {
		return nil, err
	}
	return []domain.ChatTurn{*seed}, nil
}

// SubmitTurn runs the turn pipeline and returns the persisted assistant
// turn. Sentinel errors: ErrNoActivePrompt, ErrEmptyMessage,
// ErrMessageTooLong; gateway failures surface as *ai.GatewayError with the
// user's turn already committed.
func (s *ChatService) SubmitTurn(ctx context.Context, userID, message string, uploads []AttachmentUpload) (*domain.ChatTurn, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "SubmitTurn",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("attachments", len(uploads)),
		),
	)
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	// Fail fast before any write when no template is active.
	tpl, err := repo.GetActivePromptTemplate(ctx, s.DB, s.promptCategory())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNoActivePrompt
		}
		return nil, err
	}

	prior, err := repo.CountTurns(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	// Inbound turn + attachments commit as one unit, independent of the
	// gateway outcome.
	var userTurn *domain.ChatTurn
	attachments := toAttachments(uploads)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := repo.CreateTurn(ctx, tx, userID, domain.RoleUser, message, len(attachments) > 0)
		if err != nil {
			return err
		}
		if err := repo.CreateAttachments(ctx, tx, t.ID, attachments); err != nil {
			return err
		}
		userTurn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Cold start: seed the conversation instead of calling the gateway.
	if prior == 0 {
		return repo.CreateTurn(ctx, s.DB, userID, domain.RoleAssistant, s.greeting(), false)
	}

	window, err := repo.ListRecentTurns(ctx, s.DB, userID, s.historyWindow())
	if err != nil {
		return nil, err
	}
	allFiles, err := repo.ListUserAttachments(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	composed := prompt.Compose(tpl.Body, prompt.Slots{
		History:     prompt.RenderHistory(window),
		Latest:      prompt.Sanitize(message),
		FileContext: prompt.Sanitize(prompt.RenderFileContext(attachmentsOf(userTurn.ID, allFiles), allFiles)),
	})

	reply, err := s.Gateway.Complete(ctx, composed, s.fileRefs(allFiles))
	if err != nil {
		return nil, err
	}

	return repo.CreateTurn(ctx, s.DB, userID, domain.RoleAssistant, reply, false)
}

// fileRefs normalizes stored attachment paths for the gateway: the public
// base URL prefix is stripped so paths are relative to the storage root.
func (s *ChatService) fileRefs(files []domain.Attachment) []ai.FileRef {
	if len(files) == 0 {
		return nil
	}
	out := make([]ai.FileRef, 0, len(files))
	for _, f := range files {
		p := f.StoragePath
		if s.PublicBaseURL != "" {
			p = strings.TrimPrefix(p, s.PublicBaseURL)
		}
		p = strings.TrimPrefix(p, "/")
		out = append(out, ai.FileRef{Name: f.OriginalName, Path: p})
	}
	return out
}

func (s *ChatService) greeting() string {
	if s.Greeting != "" {
		return s.Greeting
	}
	return defaultGreeting
}

func (s *ChatService) promptCategory() string {
	if s.PromptCategory != "" {
		return s.PromptCategory
	}
	return domain.PromptCategoryChat
}

func (s *ChatService) historyWindow() int {
	if s.HistoryWindow > 0 {
		return s.HistoryWindow
	}
	return 20
}

// toAttachments converts upload metadata into attachment rows (owner set at
// insert time).
func toAttachments(uploads []AttachmentUpload) []domain.Attachment {
	if len(uploads) == 0 {
		return nil
	}
	out := make([]domain.Attachment, 0, len(uploads))
	for _, u := range uploads {
		out = append(out, domain.Attachment{
			StoredName:   u.StoredName,
			OriginalName: u.OriginalName,
			StoragePath:  u.StoragePath,
			Kind:         u.Kind,
			SizeBytes:    u.SizeBytes,
			MimeType:     u.MimeType,
		})
	}
	return out
}

// attachmentsOf filters the files belonging to one turn.
func attachmentsOf(turnID uint, files []domain.Attachment) []domain.Attachment {
	var out []domain.Attachment
	for _, f := range files {
		if f.ChatTurnID == turnID {
			out = append(out, f)
		}
	}
	return out
}
