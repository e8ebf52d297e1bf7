// Package services – ReviewService
//
// This file implements the review subsystem: a type-directed validator that
// admits or rejects a batch of survey answers before any persistence, the
// all-or-nothing submission transaction, per-question statistics
// aggregation, and admin management of the question schema.
//
// The answer payload is a tagged union whose shape depends on the referenced
// question's kind and allowMultiple flag. Validation happens once at the
// boundary; what gets stored is a self-describing JSON document carrying the
// question kind alongside the value(s).
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/repo"
)

// SubmittedAnswer is one answer in a review submission. Exactly one of
// Value/Values is expected, decided by the question's kind and
// allowMultiple flag.
type SubmittedAnswer struct {
	QuestionID uint  `json:"questionId"`
	Value      any   `json:"value,omitempty"`
	Values     []any `json:"values,omitempty"`
}

// answerDoc is the persisted, self-describing form of a validated answer.
type answerDoc struct {
	Kind   string `json:"kind"`
	Value  any    `json:"value,omitempty"`
	Values []any  `json:"values,omitempty"`
}

// QuestionStats is the aggregation result for one question. Distribution is
// set for likert and choice kinds (complete, zero-initialized); Average and
// Count for rating; Count alone for text.
type QuestionStats struct {
	QuestionID   uint           `json:"question_id"`
	Text         string         `json:"text"`
	Kind         string         `json:"kind"`
	Distribution map[string]int `json:"distribution,omitempty"`
	Average      *float64       `json:"average,omitempty"`
	Count        *int           `json:"count,omitempty"`
}

// ReviewService implements survey submission, aggregation, and question
// management.
type ReviewService struct {
	DB *gorm.DB
}

// Questions returns the review schema ordered by display order then id.
func (s *ReviewService) Questions(ctx context.Context, activeOnly bool) ([]domain.ReviewQuestion, error) {
	return repo.ListQuestions(ctx, s.DB, activeOnly)
}

// Submit validates the whole batch against the question schema and, only
// when every answer passes, persists the review plus all answers in one
// transaction. On any failure the caller receives a *ValidationError naming
// the offending question and nothing is written.
func (s *ReviewService) Submit(ctx context.Context, userID string, answers []SubmittedAnswer, comment string) (uint, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("answers", len(answers)),
		),
	)
	defer span.End()

	if len(answers) == 0 {
		return 0, ErrAnswersRequired
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := repo.GetActiveQuestionsByIDs(ctx, s.DB, ids)
	if err != nil {
		return 0, err
	}

	rows := make([]domain.ReviewAnswer, 0, len(answers))
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			return 0, &ValidationError{QuestionID: a.QuestionID, Reason: "question not found or inactive"}
		}
		if err := validateAnswer(q, a); err != nil {
			return 0, err
		}
		doc := answerDoc{Kind: q.Kind}
		if isMulti(q) {
			doc.Values = a.Values
		} else {
			doc.Value = a.Value
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return 0, err
		}
		rows = append(rows, domain.ReviewAnswer{
			QuestionID: a.QuestionID,
			Answer:     datatypes.JSON(raw),
		})
	}

	review := &domain.Review{UserID: userID}
	if c := strings.TrimSpace(comment); c != "" {
		review.Comment = &c
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.CreateReview(ctx, tx, review, rows)
	})
	if err != nil {
		return 0, err
	}
	return review.ID, nil
}

// isMulti reports whether an answer must carry values[] instead of value.
func isMulti(q domain.ReviewQuestion) bool {
	return q.AllowMultiple || q.Kind == domain.KindMultiChoice
}

// validateAnswer applies the kind-specific predicate to every element of
// the answer. Any miss rejects the batch.
func validateAnswer(q domain.ReviewQuestion, a SubmittedAnswer) error {
	var elems []any
	if isMulti(q) {
		if len(a.Values) == 0 {
			return &ValidationError{QuestionID: q.ID, Reason: "values array is required"}
		}
		elems = a.Values
	} else {
		if a.Value == nil {
			return &ValidationError{QuestionID: q.ID, Reason: "value is required"}
		}
		elems = []any{a.Value}
	}

	switch q.Kind {
	case domain.KindLikert:
		for _, v := range elems {
			if !isLikertToken(v) {
				return &ValidationError{QuestionID: q.ID, Reason: "not a likert token"}
			}
		}
	case domain.KindSingleChoice, domain.KindMultiChoice:
		if len(q.Options) == 0 {
			return &ValidationError{QuestionID: q.ID, Reason: "question has no options"}
		}
		for _, v := range elems {
			if !isOption(v, q.Options) {
				return &ValidationError{QuestionID: q.ID, Reason: "not an allowed option"}
			}
		}
	case domain.KindText:
		for _, v := range elems {
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return &ValidationError{QuestionID: q.ID, Reason: "text must be a non-empty string"}
			}
		}
	case domain.KindRating:
		min, max := q.RatingBounds()
		for _, v := range elems {
			n, ok := asNumber(v)
			if !ok || n < float64(min) || n > float64(max) {
				return &ValidationError{QuestionID: q.ID, Reason: "rating out of range"}
			}
		}
	default:
		return &ValidationError{QuestionID: q.ID, Reason: "unsupported question kind"}
	}
	return nil
}

func isLikertToken(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, tok := range domain.LikertScale {
		if s == tok {
			return true
		}
	}
	return false
}

func isOption(v any, options []string) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}

// asNumber accepts the numeric shapes JSON decoding and Go callers produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Stats aggregates all persisted answers per question, active or not, in
// display order. Distributions include zero-count entries for every allowed
// token/option; a rating with no answers reports a nil average, never a
// division by zero.
func (s *ReviewService) Stats(ctx context.Context) ([]QuestionStats, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Stats")
	defer span.End()

	questions, err := repo.ListQuestions(ctx, s.DB, false)
	if err != nil {
		return nil, err
	}

	out := make([]QuestionStats, 0, len(questions))
	for _, q := range questions {
		answers, err := repo.ListAnswersByQuestion(ctx, s.DB, q.ID)
		if err != nil {
			return nil, err
		}
		item := QuestionStats{QuestionID: q.ID, Text: q.Text, Kind: q.Kind}

		switch q.Kind {
		case domain.KindLikert:
			item.Distribution = distribution(domain.LikertScale, answers)
		case domain.KindSingleChoice, domain.KindMultiChoice:
			item.Distribution = distribution(q.Options, answers)
		case domain.KindRating:
			sum, count := 0.0, 0
			forEachElement(answers, func(v any) {
				if n, ok := asNumber(v); ok {
					sum += n
					count++
				}
			})
			if count > 0 {
				avg := sum / float64(count)
				item.Average = &avg
			}
			item.Count = &count
		case domain.KindText:
			count := 0
			forEachElement(answers, func(v any) {
				if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
					count++
				}
			})
			item.Count = &count
		}
		out = append(out, item)
	}
	return out, nil
}

// distribution counts answer elements per allowed token, zero-initialized
// so charts always see the full scale.
func distribution(allowed []string, answers []domain.ReviewAnswer) map[string]int {
	dist := make(map[string]int, len(allowed))
	for _, tok := range allowed {
		dist[tok] = 0
	}
	forEachElement(answers, func(v any) {
		if s, ok := v.(string); ok {
			if _, known := dist[s]; known {
				dist[s]++
			}
		}
	})
	return dist
}

// forEachElement unpacks each stored answer document and visits every
// element, flattening values[] payloads. Undecodable rows are skipped.
func forEachElement(answers []domain.ReviewAnswer, visit func(any)) {
	for _, a := range answers {
		var doc answerDoc
		if err := json.Unmarshal(a.Answer, &doc); err != nil {
			continue
		}
		if doc.Values != nil {
			for _, v := range doc.Values {
				visit(v)
			}
			continue
		}
		if doc.Value != nil {
			visit(doc.Value)
		}
	}
}

// ListPage returns a page of submitted reviews with answers and the total
// count. An empty userID lists across all users.
func (s *ReviewService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountReviews(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Review{}, 0, nil
	}
	items, err := repo.ListReviewsPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// QuestionInput is the create/update payload for a review question.
type QuestionInput struct {
	Text          string   `json:"text"`
	IsActive      *bool    `json:"is_active,omitempty"`
	DisplayOrder  *int     `json:"display_order,omitempty"`
	Kind          string   `json:"kind"`
	AllowMultiple *bool    `json:"allow_multiple,omitempty"`
	Options       []string `json:"options,omitempty"`
	MinValue      *int     `json:"min_value,omitempty"`
	MaxValue      *int     `json:"max_value,omitempty"`
}

// CreateQuestion validates and inserts a new review question. Choice kinds
// require a non-empty option set; rating bounds must satisfy min <= max.
func (s *ReviewService) CreateQuestion(ctx context.Context, in QuestionInput) (*domain.ReviewQuestion, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidQuestion
	}
	kind := in.Kind
	if kind == "" {
		kind = domain.KindLikert
	}
	if !validKind(kind) {
		return nil, ErrInvalidQuestion
	}

	q := &domain.ReviewQuestion{
		Text:     text,
		IsActive: true,
		Kind:     kind,
	}
	if in.IsActive != nil {
		q.IsActive = *in.IsActive
	}
	if in.DisplayOrder != nil {
		q.DisplayOrder = *in.DisplayOrder
	}
	if in.AllowMultiple != nil {
		q.AllowMultiple = *in.AllowMultiple
	}

	switch kind {
	case domain.KindSingleChoice, domain.KindMultiChoice:
		if len(in.Options) == 0 {
			return nil, ErrInvalidQuestion
		}
		q.Options = in.Options
	case domain.KindRating:
		min, max := 1, 5
		if in.MinValue != nil {
			min = *in.MinValue
		}
		if in.MaxValue != nil {
			max = *in.MaxValue
		}
		if min > max {
			return nil, ErrInvalidQuestion
		}
		q.MinValue = &min
		q.MaxValue = &max
	}

	if err := repo.CreateQuestion(ctx, s.DB, q); err != nil {
		return nil, err
	}
	return q, nil
}

// UpdateQuestion applies a partial update to a question. Fields left nil
// (or empty for Text/Kind/Options) keep their stored value.
func (s *ReviewService) UpdateQuestion(ctx context.Context, id uint, in QuestionInput) (*domain.ReviewQuestion, error) {
	updates := map[string]any{}
	if t := strings.TrimSpace(in.Text); t != "" {
		updates["text"] = t
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.Kind != "" {
		if !validKind(in.Kind) {
			return nil, ErrInvalidQuestion
		}
		updates["kind"] = in.Kind
	}
	if in.AllowMultiple != nil {
		updates["allow_multiple"] = *in.AllowMultiple
	}
	if in.Options != nil {
		updates["options"] = datatypes.JSONSlice[string](in.Options)
	}
	if in.MinValue != nil {
		updates["min_value"] = *in.MinValue
	}
	if in.MaxValue != nil {
		updates["max_value"] = *in.MaxValue
	}

	q, err := repo.UpdateQuestion(ctx, s.DB, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func validKind(kind string) bool {
	switch kind {
	case domain.KindLikert, domain.KindSingleChoice, domain.KindMultiChoice,
		domain.KindText, domain.KindRating:
		return true
	}
	return false
}
