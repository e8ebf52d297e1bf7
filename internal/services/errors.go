// Package services defines the business logic for the chat engine, prompt
// templates, reviews, and skill notifications. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import (
	"errors"
	"fmt"
)

// Chat-related errors.
var (
	// ErrNoActivePrompt is returned when no prompt template is active for
	// the chat category. There is deliberately no hardcoded fallback.
	ErrNoActivePrompt = errors.New("no active prompt template")

	// ErrEmptyMessage is returned when a turn submission contains an empty
	// message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a turn submission exceeds the
	// configured maximum length.
	ErrMessageTooLong = errors.New("message too long")
)

// Prompt-template errors.
var (
	// ErrPromptNotFound indicates that the requested template does not exist.
	ErrPromptNotFound = errors.New("prompt template not found")

	// ErrInvalidPrompt is returned when a template create/update payload is
	// missing required fields or names an unknown category.
	ErrInvalidPrompt = errors.New("invalid prompt template")
)

// Review-related errors.
var (
	// ErrAnswersRequired is returned when a review submission carries no
	// answers at all.
	ErrAnswersRequired = errors.New("answers are required")

	// ErrQuestionNotFound indicates that the requested review question does
	// not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrInvalidQuestion is returned when a question create/update payload
	// violates the schema rules (unknown kind, missing options, bad bounds).
	ErrInvalidQuestion = errors.New("invalid question definition")
)

// Notification errors.
var (
	// ErrNotificationNotFound indicates that the notification does not exist
	// or is not addressed to the current user.
	ErrNotificationNotFound = errors.New("notification not found")
)

// ValidationError rejects a review submission, identifying the first
// offending answer. The whole batch is discarded; nothing is persisted.
type ValidationError struct {
	QuestionID uint
	Reason     string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid answer for question %d: %s", e.QuestionID, e.Reason)
}
