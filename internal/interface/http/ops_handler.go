package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/schedule"
)

// ListAppointments filters by optional date and comma separated status list.
func (h *Handler) ListAppointments(c *gin.Context) {
	var filter booking.Filter
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, err := schedule.ParseDate(raw)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		filter.Date = date
	}
	filter.StatusIn = parseStatuses(c.Query("status"))
	appts, err := h.opsSvc.List(c.Request.Context(), filter)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts})
}

// GetAppointment returns one appointment.
func (h *Handler) GetAppointment(c *gin.Context) {
	appt, err := h.opsSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CancelAppointment frees the slot.
func (h *Handler) CancelAppointment(c *gin.Context) {
	h.transition(c, h.opsSvc.Cancel)
}

// CompleteAppointment marks the inspection done.
func (h *Handler) CompleteAppointment(c *gin.Context) {
	h.transition(c, h.opsSvc.Complete)
}

func (h *Handler) transition(c *gin.Context, apply func(ctx context.Context, id string) (booking.Appointment, error)) {
	claims, _ := getClaims(c)
	appt, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	h.logger.Info("appointment status changed", "id", appt.ID, "status", appt.Status, "staff_id", claims.StaffID)
	c.JSON(http.StatusOK, appt)
}

func parseStatuses(raw string) []booking.Status {
	var out []booking.Status
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, booking.Status(part))
		}
	}
	return out
}
