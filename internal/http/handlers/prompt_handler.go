// Prompt template HTTP handlers (admin surface).
//
//   - POST   /admin/prompts               (create)
//   - GET    /admin/prompts               (list, optional category filter)
//   - GET    /admin/prompts/active        (resolve the active template)
//   - GET    /admin/prompts/:id           (fetch one)
//   - PUT    /admin/prompts/:id           (update)
//   - PUT    /admin/prompts/:id/activate  (atomic activation swap)
//   - DELETE /admin/prompts/:id           (delete)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coderbhiya/careerai-be/internal/services"
	"github.com/coderbhiya/careerai-be/internal/utils"
)

// actor returns the caller identity as an audit pointer, nil for the
// development fallback.
func actor(c *gin.Context) *string {
	uid := userID(c)
	if uid == "" || uid == "demo-user" {
		return nil
	}
	return &uid
}

// promptID parses the :id path param, writing a 400 on failure.
func promptID(c *gin.Context) (uint, bool) {
	id := uint(utils.AtoiDefault(c.Param("id"), 0))
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt id must be a positive integer")
		return 0, false
	}
	return id, true
}

// failPrompt maps prompt service errors onto HTTP responses.
func failPrompt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPromptNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "prompt template not found")
	case errors.Is(err, services.ErrInvalidPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid prompt template")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// CreatePrompt godoc
// @ID          createPrompt
// @Summary     Create a prompt template
// @Description Creates a template. Creating it active atomically deactivates the category's previous active template.
// @Tags        Prompts
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.PromptInput  true  "Template payload"
//
// @Success     201  {object}  domain.PromptTemplate
// @Failure     400  {object}  handlers.ErrorResponse "Invalid template"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/prompts [post]
func (h *Handlers) CreatePrompt(c *gin.Context) {
	var in services.PromptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	tpl, err := h.prompts.Create(c.Request.Context(), in, actor(c))
	if err != nil {
		failPrompt(c, err)
		return
	}
	ok(c, http.StatusCreated, tpl)
}

// ListPrompts godoc
// @ID          listPrompts
// @Summary     List prompt templates
// @Description Returns templates ordered by last update, optionally filtered by category.
// @Tags        Prompts
// @Produce     json
//
// @Param       category  query  string  false "Filter by category"  Enums(chat, skill, system, other)
//
// @Success     200  {array}   domain.PromptTemplate
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/prompts [get]
func (h *Handlers) ListPrompts(c *gin.Context) {
	items, err := h.prompts.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// ActivePrompt godoc
// @ID          activePrompt
// @Summary     Get the active prompt template
// @Description Resolves the single active template for a category (default chat).
// @Tags        Prompts
// @Produce     json
//
// @Param       category  query  string  false "Template category"  Enums(chat, skill, system, other) default(chat)
//
// @Success     200  {object}  domain.PromptTemplate
// @Failure     404  {object}  handlers.ErrorResponse "No active template"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/prompts/active [get]
func (h *Handlers) ActivePrompt(c *gin.Context) {
	tpl, err := h.prompts.Active(c.Request.Context(), c.Query("category"))
	if err != nil {
		failPrompt(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// GetPrompt godoc
// @ID          getPrompt
// @Summary     Get a prompt template
// @Tags        Prompts
// @Produce     json
//
// @Param       id  path  int  true  "Template ID"
//
// @Success     200  {object}  domain.PromptTemplate
// @Failure     404  {object}  handlers.ErrorResponse "Template not found"
// @Router      /admin/prompts/{id} [get]
func (h *Handlers) GetPrompt(c *gin.Context) {
	id, okID := promptID(c)
	if !okID {
		return
	}
	tpl, err := h.prompts.Get(c.Request.Context(), id)
	if err != nil {
		failPrompt(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// UpdatePrompt godoc
// @ID          updatePrompt
// @Summary     Update a prompt template
// @Description Applies a partial update. Activating via this route also swaps the category's active template.
// @Tags        Prompts
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                   true  "Template ID"
// @Param       body  body  services.PromptInput  true  "Fields to update"
//
// @Success     200  {object}  domain.PromptTemplate
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Template not found"
// @Router      /admin/prompts/{id} [put]
func (h *Handlers) UpdatePrompt(c *gin.Context) {
	id, okID := promptID(c)
	if !okID {
		return
	}

	var in services.PromptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	tpl, err := h.prompts.Update(c.Request.Context(), id, in, actor(c))
	if err != nil {
		failPrompt(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// ActivatePrompt godoc
// @ID          activatePrompt
// @Summary     Activate a prompt template
// @Description Atomically deactivates the category's current active template and activates this one.
// @Tags        Prompts
// @Produce     json
//
// @Param       id  path  int  true  "Template ID"
//
// @Success     200  {object}  domain.PromptTemplate
// @Failure     404  {object}  handlers.ErrorResponse "Template not found"
// @Router      /admin/prompts/{id}/activate [put]
func (h *Handlers) ActivatePrompt(c *gin.Context) {
	id, okID := promptID(c)
	if !okID {
		return
	}
	tpl, err := h.prompts.Activate(c.Request.Context(), id, actor(c))
	if err != nil {
		failPrompt(c, err)
		return
	}
	ok(c, http.StatusOK, tpl)
}

// DeletePrompt godoc
// @ID          deletePrompt
// @Summary     Delete a prompt template
// @Tags        Prompts
//
// @Param       id  path  int  true  "Template ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Template not found"
// @Router      /admin/prompts/{id} [delete]
func (h *Handlers) DeletePrompt(c *gin.Context) {
	id, okID := promptID(c)
	if !okID {
		return
	}
	if err := h.prompts.Delete(c.Request.Context(), id); err != nil {
		failPrompt(c, err)
		return
	}
	noContent(c)
}
