package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/roofbook/internal/domain/auth"
	"github.com/yanqian/roofbook/internal/domain/booking"
	"github.com/yanqian/roofbook/internal/domain/lead"
	"github.com/yanqian/roofbook/internal/domain/payment"
	"github.com/yanqian/roofbook/internal/domain/schedule"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	bookingSvc booking.Service
	opsSvc     booking.Operations
	leadSvc    lead.Service
	paymentSvc payment.Service
	authSvc    auth.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(
	bookingSvc booking.Service,
	opsSvc booking.Operations,
	leadSvc lead.Service,
	paymentSvc payment.Service,
	authSvc auth.Service,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bookingSvc: bookingSvc,
		opsSvc:     opsSvc,
		leadSvc:    leadSvc,
		paymentSvc: paymentSvc,
		authSvc:    authSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// DayAvailability reports whether a date can be booked.
func (h *Handler) DayAvailability(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	day, err := h.bookingSvc.GetDayAvailability(c.Request.Context(), date)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// SlotAvailability lists every slot of the date with its booked/held marks.
func (h *Handler) SlotAvailability(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	slots, err := h.bookingSvc.GetSlotAvailability(c.Request.Context(), date)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// Calendar returns the month grid. month defaults to the current month, or to
// the selected date's month when only selected is given.
func (h *Handler) Calendar(c *gin.Context) {
	var (
		view schedule.MonthView
		err  error
	)
	selected := strings.TrimSpace(c.Query("selected"))
	var selectedDate schedule.Date
	if selected != "" {
		selectedDate, err = schedule.ParseDate(selected)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	}
	switch month := strings.TrimSpace(c.Query("month")); {
	case month != "":
		view, err = schedule.ParseMonth(month)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
	case !selectedDate.IsZero():
		view = schedule.MonthOf(selectedDate)
	}
	view.Selected = selectedDate
	grid, err := h.bookingSvc.GetMonth(c.Request.Context(), view)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

// Review validates the booking form and returns the summary without persisting.
func (h *Handler) Review(c *gin.Context) {
	var req booking.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	summary, err := h.bookingSvc.Review(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// CreateBooking runs the full booking transaction.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req booking.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	confirmation, err := h.bookingSvc.AttemptBooking(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, confirmation)
}

// Receipt returns the archived confirmation.
func (h *Handler) Receipt(c *gin.Context) {
	receipt, err := h.bookingSvc.Receipt(c.Request.Context(), c.Param("number"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// CreateHold places a soft hold on a slot.
func (h *Handler) CreateHold(c *gin.Context) {
	var req booking.HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	hold, err := h.bookingSvc.Hold(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hold)
}

// ReleaseHold drops a soft hold. The slot is given by the date and time query parameters.
func (h *Handler) ReleaseHold(c *gin.Context) {
	req := booking.HoldRequest{
		Date:  c.Query("date"),
		Time:  c.Query("time"),
		Token: c.Param("token"),
	}
	if err := h.bookingSvc.ReleaseHold(c.Request.Context(), req); err != nil {
		abortWithAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func dateParam(c *gin.Context) (schedule.Date, bool) {
	date, err := schedule.ParseDate(c.Param("date"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return schedule.Date{}, false
	}
	return date, true
}
