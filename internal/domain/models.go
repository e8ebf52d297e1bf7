// Package domain defines the persistence models for the conversational
// career-mentor engine: chat turns with file attachments, prompt templates,
// the review (survey) schema with its answers, user skill scores, and
// notifications. These types are mapped with GORM and form the core data
// layer of the application.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Roles a chat turn can be authored by.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Question kinds supported by the review schema.
const (
	KindLikert       = "likert"
	KindSingleChoice = "single_choice"
	KindMultiChoice  = "multi_choice"
	KindText         = "text"
	KindRating       = "rating"
)

// LikertScale is the fixed token set accepted for likert answers, ordered
// from most to least satisfied. Aggregation reports every token, including
// those with zero answers.
var LikertScale = []string{
	"very_satisfied",
	"satisfied",
	"neutral",
	"unsatisfied",
	"very_unsatisfied",
}

// ChatTurn is a single utterance in a user's conversation with the mentor.
// Turns are immutable once created; the auto-incremented ID is the sole
// ordering authority for conversation history (insertion order = causal
// order; CreatedAt is informational only).
//
// Fields:
//   - ID: monotonic primary key, defines per-user turn ordering.
//   - UserID: owner of the conversation; indexed for history retrieval.
//   - Role: "user" or "assistant" (enforced by DB constraint).
//   - Message: full text content of the turn.
//   - HasAttachments: true when the turn carries file attachments.
type ChatTurn struct {
	ID             uint      `json:"id"              gorm:"primaryKey;autoIncrement"`
	UserID         string    `json:"user_id"         gorm:"type:varchar(64);not null;index:idx_user_turns"`
	Role           string    `json:"role"            gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Message        string    `json:"message"         gorm:"type:text;not null"`
	HasAttachments bool      `json:"has_attachments" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`

	// Attachments are created in the same transaction as the owning turn
	// and cascade-deleted with it.
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:ChatTurnID"`
}

// TableName returns the database table name for ChatTurn.
func (ChatTurn) TableName() string { return "chat_turns" }

// Attachment records the metadata of a file uploaded alongside a chat turn.
// An attachment belongs to exactly one turn and is never mutated after
// creation.
type Attachment struct {
	ID           uint      `json:"id"            gorm:"primaryKey;autoIncrement"`
	ChatTurnID   uint      `json:"chat_turn_id"  gorm:"not null;index"`
	StoredName   string    `json:"stored_name"   gorm:"type:varchar(255);not null"`
	OriginalName string    `json:"original_name" gorm:"type:varchar(255);not null"`
	StoragePath  string    `json:"storage_path"  gorm:"type:varchar(500);not null"`
	Kind         string    `json:"kind"          gorm:"type:varchar(100);not null"`
	SizeBytes    int64     `json:"size_bytes"    gorm:"not null"`
	MimeType     string    `json:"mime_type"     gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `json:"created_at"`

	ChatTurn ChatTurn `json:"-" gorm:"foreignKey:ChatTurnID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Attachment.
func (Attachment) TableName() string { return "attachments" }

// Prompt template categories.
const (
	PromptCategoryChat   = "chat"
	PromptCategorySkill  = "skill"
	PromptCategorySystem = "system"
	PromptCategoryOther  = "other"
)

// PromptTemplate is operator-managed instruction text for the completion
// gateway. At most one template may be active per category at any time;
// activation is an atomic swap (see repo.ActivatePromptTemplate) backed by
// a partial unique index on (category) WHERE is_active.
type PromptTemplate struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null"`
	Body      string    `json:"body"       gorm:"type:text;not null"`
	Category  string    `json:"category"   gorm:"type:varchar(32);not null;default:'chat';index;check:category IN ('chat','skill','system','other')"`
	IsActive  bool      `json:"is_active"  gorm:"not null;default:false"`
	CreatedBy *string   `json:"created_by,omitempty" gorm:"type:varchar(64)"`
	UpdatedBy *string   `json:"updated_by,omitempty" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for PromptTemplate.
func (PromptTemplate) TableName() string { return "prompt_templates" }

// ReviewQuestion is one typed question in the feedback survey. Options is
// non-null only for choice kinds; MinValue/MaxValue bound rating answers
// (defaulting to 1..5 when unset).
type ReviewQuestion struct {
	ID            uint                         `json:"id"             gorm:"primaryKey;autoIncrement"`
	Text          string                       `json:"text"           gorm:"type:varchar(500);not null"`
	IsActive      bool                         `json:"is_active"      gorm:"not null;default:true"`
	DisplayOrder  int                          `json:"display_order"  gorm:"not null;default:0"`
	Kind          string                       `json:"kind"           gorm:"type:varchar(16);not null;default:'likert';check:kind IN ('likert','single_choice','multi_choice','text','rating')"`
	AllowMultiple bool                         `json:"allow_multiple" gorm:"not null;default:false"`
	Options       datatypes.JSONSlice[string]  `json:"options,omitempty"`
	MinValue      *int                         `json:"min_value,omitempty"`
	MaxValue      *int                         `json:"max_value,omitempty"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

// TableName returns the database table name for ReviewQuestion.
func (ReviewQuestion) TableName() string { return "review_questions" }

// RatingBounds returns the inclusive numeric range for rating answers,
// applying the 1..5 defaults when unset.
func (q ReviewQuestion) RatingBounds() (min, max int) {
	min, max = 1, 5
	if q.MinValue != nil {
		min = *q.MinValue
	}
	if q.MaxValue != nil {
		max = *q.MaxValue
	}
	return min, max
}

// Review is the header row of one survey submission. A user may submit any
// number of reviews over time.
type Review struct {
	ID        uint      `json:"id"       gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id"  gorm:"type:varchar(64);not null;index"`
	Comment   *string   `json:"comment,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	Answers []ReviewAnswer `json:"answers,omitempty" gorm:"foreignKey:ReviewID"`
}

// TableName returns the database table name for Review.
func (Review) TableName() string { return "reviews" }

// ReviewAnswer stores one validated answer as a self-describing JSON
// document: {"kind": ..., "value": ...} or {"kind": ..., "values": [...]}.
// The payload is written only after the whole batch passed validation.
type ReviewAnswer struct {
	ID         uint           `json:"id"          gorm:"primaryKey;autoIncrement"`
	ReviewID   uint           `json:"review_id"   gorm:"not null;index"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Answer     datatypes.JSON `json:"answer"      gorm:"not null"`
	CreatedAt  time.Time      `json:"created_at"`

	Review   Review         `json:"-" gorm:"foreignKey:ReviewID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Question ReviewQuestion `json:"-" gorm:"foreignKey:QuestionID;references:ID"`
}

// TableName returns the database table name for ReviewAnswer.
func (ReviewAnswer) TableName() string { return "review_answers" }

// Skill is a named skill referenced by per-user scores.
type Skill struct {
	ID        uint      `json:"id"   gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Skill.
func (Skill) TableName() string { return "skills" }

// UserSkill holds a user's 0..100 assessment score for one skill. Scores
// are written by the assessment flow and read by the low-skill notifier.
type UserSkill struct {
	ID         uint      `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserID     string    `json:"user_id"     gorm:"type:varchar(64);not null;index:idx_user_skill,priority:1"`
	SkillID    uint      `json:"skill_id"    gorm:"not null;index:idx_user_skill,priority:2"`
	SkillScore int       `json:"skill_score" gorm:"not null;check:skill_score BETWEEN 0 AND 100"`
	UpdatedAt  time.Time `json:"updated_at"`

	Skill Skill `json:"skill" gorm:"foreignKey:SkillID;references:ID"`
}

// TableName returns the database table name for UserSkill.
func (UserSkill) TableName() string { return "user_skills" }

// Notification categories.
const (
	NotificationSkillImprovement = "skill_improvement"
	NotificationCommon           = "common"
)

// Notification is a message surfaced to one user (UserID set) or broadcast
// to everyone (TargetAll). The notifier only creates rows; read state is
// flipped by the user-facing API.
type Notification struct {
	ID        uint           `json:"id"      gorm:"primaryKey;autoIncrement"`
	Type      string         `json:"type"    gorm:"type:varchar(32);not null;default:'common'"`
	Title     string         `json:"title"   gorm:"type:varchar(255)"`
	Message   string         `json:"message" gorm:"type:text;not null"`
	Link      *string        `json:"link,omitempty" gorm:"type:varchar(500)"`
	TargetAll bool           `json:"target_all" gorm:"not null;default:false"`
	IsRead    bool           `json:"is_read"    gorm:"not null;default:false"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	UserID    *string        `json:"user_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
