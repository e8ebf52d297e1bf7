// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the review
// schema (questions), submissions (reviews + answers), and the queries the
// aggregator runs over persisted answers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/coderbhiya/careerai-be/internal/domain"
)

// ListQuestions returns review questions ordered by display_order then id.
// When activeOnly is set, inactive questions are filtered out.
func ListQuestions(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.ReviewQuestion, error) {
	q := db.WithContext(ctx).Order("display_order ASC, id ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.ReviewQuestion
	err := q.Find(&out).Error
	return out, err
}

// GetActiveQuestionsByIDs fetches the active questions among ids, keyed by
// ID. Missing or inactive ids are simply absent from the map; the validator
// decides what that means for the batch.
func GetActiveQuestionsByIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]domain.ReviewQuestion, error) {
	var rows []domain.ReviewQuestion
	err := db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]domain.ReviewQuestion, len(rows))
	for _, q := range rows {
		out[q.ID] = q
	}
	return out, nil
}

// CreateQuestion inserts a review question.
func CreateQuestion(ctx context.Context, db *gorm.DB, q *domain.ReviewQuestion) error {
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now
	return db.WithContext(ctx).Create(q).Error
}

// GetQuestion fetches a question by ID, or ErrNotFound.
func GetQuestion(ctx context.Context, db *gorm.DB, id uint) (*domain.ReviewQuestion, error) {
	var q domain.ReviewQuestion
	if err := db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion applies column updates to a question and returns the fresh
// row. Returns ErrNotFound when the question does not exist.
func UpdateQuestion(ctx context.Context, db *gorm.DB, id uint, updates map[string]any) (*domain.ReviewQuestion, error) {
	updates["updated_at"] = time.Now().UTC()
	var q domain.ReviewQuestion
	if err := db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&q).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateReview inserts a review header plus all of its answers as one unit.
// Callers pass a transaction handle; validation must already have passed.
func CreateReview(ctx context.Context, tx *gorm.DB, review *domain.Review, answers []domain.ReviewAnswer) error {
	review.CreatedAt = time.Now().UTC()
	if err := tx.WithContext(ctx).Create(review).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].ReviewID = review.ID
		answers[i].CreatedAt = review.CreatedAt
	}
	return tx.WithContext(ctx).Create(&answers).Error
}

// ListAnswersByQuestion returns all persisted answers for one question.
func ListAnswersByQuestion(ctx context.Context, db *gorm.DB, questionID uint) ([]domain.ReviewAnswer, error) {
	var out []domain.ReviewAnswer
	err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Find(&out).Error
	return out, err
}

// CountReviews returns the total number of reviews, optionally scoped to a
// single user (empty userID counts all).
func CountReviews(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Review{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListReviewsPage returns a page of reviews with their answers, most recent
// first. An empty userID lists across all users.
func ListReviewsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Review, error) {
	q := db.WithContext(ctx).
		Preload("Answers").
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var out []domain.Review
	err := q.Find(&out).Error
	return out, err
}
