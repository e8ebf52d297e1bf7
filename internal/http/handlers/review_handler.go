// Review HTTP handlers.
//
// Public surface:
//   - GET  /reviews/questions   (active question schema)
//   - POST /reviews             (submit answers, all-or-nothing)
//
// Admin surface:
//   - GET  /admin/reviews        (paginated submissions)
//   - GET  /admin/reviews/stats  (per-question aggregation)
//   - GET  /admin/questions      (full schema, including inactive)
//   - POST /admin/questions      (create question)
//   - PUT  /admin/questions/:id  (partial update)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coderbhiya/careerai-be/internal/domain"
	"github.com/coderbhiya/careerai-be/internal/services"
	"github.com/coderbhiya/careerai-be/internal/utils"
)

//
// DTOs
//

// SubmitReviewRequest is the JSON payload for submitting a review.
type SubmitReviewRequest struct {
	Answers []services.SubmittedAnswer `json:"answers"`
	Comment string                     `json:"comment,omitempty"`
}

// SubmitReviewResponse returns the identifier of the persisted review.
type SubmitReviewResponse struct {
	ID uint `json:"id"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListReviewsResponse wraps a page of reviews and pagination information.
type ListReviewsResponse struct {
	Reviews    []domain.Review `json:"reviews"`
	Pagination Pagination      `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	return utils.ClampPage(page, pageSize, defaultPageSize, maxPageSize)
}

//
// Public handlers
//

// ListQuestions godoc
// @ID          listReviewQuestions
// @Summary     List active review questions
// @Description Returns the active question schema in display order.
// @Tags        Reviews
// @Produce     json
//
// @Success     200  {array}   domain.ReviewQuestion
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reviews/questions [get]
func (h *Handlers) ListQuestions(c *gin.Context) {
	qs, err := h.reviews.Questions(c.Request.Context(), true)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, qs)
}

// SubmitReview godoc
// @ID          submitReview
// @Summary     Submit a review
// @Description Validates every answer against the question schema; on any failure nothing is persisted.
// @Tags        Reviews
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SubmitReviewRequest  true  "Review payload"
//
// @Success     201  {object}  handlers.SubmitReviewResponse
// @Failure     400  {object}  handlers.ErrorResponse "Missing answers"
// @Failure     422  {object}  handlers.ErrorResponse "Answer failed validation"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /reviews [post]
func (h *Handlers) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	id, err := h.reviews.Submit(c.Request.Context(), userID(c), req.Answers, req.Comment)
	if err != nil {
		var vErr *services.ValidationError
		switch {
		case errors.Is(err, services.ErrAnswersRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answers are required")
		case errors.As(err, &vErr):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidationFailed, vErr.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, SubmitReviewResponse{ID: id})
}

//
// Admin handlers
//

// ListReviews godoc
// @ID          listReviews
// @Summary     List submitted reviews (paginated)
// @Description Returns a page of reviews with answers, newest first. Filter by user_id query param.
// @Tags        Admin
// @Produce     json
//
// @Param       user_id    query   string  false "Restrict to one user"
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListReviewsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/reviews [get]
func (h *Handlers) ListReviews(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.reviews.ListPage(c.Request.Context(), c.Query("user_id"), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListReviewsResponse{
		Reviews: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ReviewStats godoc
// @ID          reviewStats
// @Summary     Aggregate review answers per question
// @Description Returns distributions for likert/choice kinds, average and count for rating, count for text. Covers all questions, active or not.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {array}   services.QuestionStats
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/reviews/stats [get]
func (h *Handlers) ReviewStats(c *gin.Context) {
	stats, err := h.reviews.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}

// ListAllQuestions godoc
// @ID          listAllQuestions
// @Summary     List all review questions
// @Description Returns the full question schema including inactive questions.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {array}   domain.ReviewQuestion
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/questions [get]
func (h *Handlers) ListAllQuestions(c *gin.Context) {
	qs, err := h.reviews.Questions(c.Request.Context(), false)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, qs)
}

// CreateQuestion godoc
// @ID          createQuestion
// @Summary     Create a review question
// @Description Choice kinds require options; rating kinds accept optional bounds (default 1..5).
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.QuestionInput  true  "Question definition"
//
// @Success     201  {object}  domain.ReviewQuestion
// @Failure     400  {object}  handlers.ErrorResponse "Invalid definition"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/questions [post]
func (h *Handlers) CreateQuestion(c *gin.Context) {
	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	q, err := h.reviews.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrInvalidQuestion) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid question definition")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, q)
}

// UpdateQuestion godoc
// @ID          updateQuestion
// @Summary     Update a review question
// @Description Applies a partial update; omitted fields keep their stored value.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                     true  "Question ID"
// @Param       body  body  services.QuestionInput  true  "Fields to update"
//
// @Success     200  {object}  domain.ReviewQuestion
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Question not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/questions/{id} [put]
func (h *Handlers) UpdateQuestion(c *gin.Context) {
	id := uint(utils.AtoiDefault(c.Param("id"), 0))
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "question id must be a positive integer")
		return
	}

	var in services.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	q, err := h.reviews.UpdateQuestion(c.Request.Context(), id, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuestionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "question not found")
		case errors.Is(err, services.ErrInvalidQuestion):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid question definition")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, q)
}
