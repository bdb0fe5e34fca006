package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/roofbook/internal/domain/lead"
)

// CreateMeasurement stores a measurement lead.
func (h *Handler) CreateMeasurement(c *gin.Context) {
	var req lead.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	created, err := h.leadSvc.Create(c.Request.Context(), req)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetMeasurement returns a lead so the booking form can prefill it.
func (h *Handler) GetMeasurement(c *gin.Context) {
	found, err := h.leadSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}
