// Notification HTTP handlers.
//
//   - GET  /notifications           (user's notifications plus broadcasts)
//   - PUT  /notifications/:id/read  (mark one as read)
//   - POST /admin/notifications/low-skill-sweep   (trigger the sweep outside its schedule)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coderbhiya/careerai-be/internal/services"
	"github.com/coderbhiya/careerai-be/internal/utils"
)

// SweepResponse reports how many notifications a sweep produced.
type SweepResponse struct {
	Created int `json:"created"`
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List notifications
// @Description Returns the user's targeted notifications and broadcasts, newest first.
// @Tags        Notifications
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}   domain.Notification
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	items, err := h.notify.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark a notification as read
// @Tags        Notifications
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    int     true  "Notification ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Notification not found"
// @Router      /notifications/{id}/read [put]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id := uint(utils.AtoiDefault(c.Param("id"), 0))
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a positive integer")
		return
	}

	if err := h.notify.MarkRead(c.Request.Context(), id, userID(c)); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// TriggerLowSkillSweep godoc
// @ID          triggerLowSkillSweep
// @Summary     Run the low-skill notification sweep now
// @Description Scans skill scores below the threshold and creates one notification per affected user. Normally runs on the daily schedule.
// @Tags        Admin
// @Produce     json
//
// @Success     200  {object}  handlers.SweepResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /admin/notifications/low-skill-sweep [post]
func (h *Handlers) TriggerLowSkillSweep(c *gin.Context) {
	created, err := h.notify.LowSkillSweep(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SweepResponse{Created: created})
}
