package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/roofbook/internal/domain/auth"
	apperrors "github.com/yanqian/roofbook/pkg/errors"
)

// staffOnly requires a valid staff access token.
func staffOnly(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing authorization header", nil))
			return
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "invalid authorization header", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if !apperrors.IsCode(err, "invalid_token") {
				abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err))
				return
			}
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "invalid_token", apperrors.MessageOf(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}
