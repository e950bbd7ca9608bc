package httpapi

import (
	"errors"
	"log"
	"net/http"

	analyticsApp "trade-journal/internal/application/analytics"
	"trade-journal/internal/application/assistant"
	"trade-journal/internal/application/calculator"
	"trade-journal/internal/domain/journal"

	"github.com/gin-gonic/gin"
)

const (
	errCodeBadRequest         = "BAD_REQUEST"
	errCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	errCodeUnauthorized       = "AUTH_UNAUTHORIZED"
	errCodeForbidden          = "AUTH_FORBIDDEN"
	errCodeNotFound           = "NOT_FOUND"
	errCodeRateLimited        = "RATE_LIMITED"
	errCodeInternal           = "INTERNAL_ERROR"
	refreshCookieName         = "refresh_token"
)

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg, "error_code": code})
}

func abortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "error_code": code})
}

// respondDomainError 依 sentinel error 對應 HTTP 狀態，其餘視為內部錯誤。
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, journal.ErrTradeNotFound):
		respondError(c, http.StatusNotFound, errCodeNotFound, "trade not found")
	case errors.Is(err, journal.ErrInvalidTrade),
		errors.Is(err, analyticsApp.ErrInvalidInput),
		errors.Is(err, assistant.ErrEmptyMessage),
		errors.Is(err, calculator.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, errCodeBadRequest, err.Error())
	default:
		log.Printf("[HTTP] internal error path=%s err=%v", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, errCodeInternal, "internal error")
	}
}
