package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const webhookBodyLimit = 1 << 20

// StripeWebhook records payment results. The signature is the authentication.
func (h *Handler) StripeWebhook(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if strings.TrimSpace(signature) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing Stripe-Signature header", nil))
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read request body", err))
		return
	}
	result, err := h.paymentSvc.HandleWebhook(c.Request.Context(), body, signature)
	if err != nil {
		abortWithAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
