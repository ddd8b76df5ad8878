package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/jobboard/internal/log"
	"github.com/tazhibayda/jobboard/internal/service"
	"github.com/tazhibayda/jobboard/internal/storage"
)

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

// writeError maps service errors to a status and a client-safe message.
// Anything unrecognised is logged and reported as a 500.
func writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, service.ErrAlreadyApplied):
		fail(c, http.StatusBadRequest, "Already Applied")
	case errors.Is(err, service.ErrInvalidResume):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		fail(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrJobNotFound):
		fail(c, http.StatusNotFound, "Job Not Found")
	case errors.Is(err, service.ErrCompanyNotFound):
		fail(c, http.StatusNotFound, "Company not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		fail(c, http.StatusNotFound, "Application not found")
	case errors.Is(err, service.ErrEmailTaken):
		fail(c, http.StatusConflict, "Company already registered")
	case errors.Is(err, storage.ErrDisabled):
		fail(c, http.StatusServiceUnavailable, "File uploads are not available")
	case errors.Is(err, context.DeadlineExceeded):
		log.WithDD(c.Request.Context(), zap.L()).Warn("request timed out",
			zap.String("route", c.FullPath()), zap.Error(err))
		fail(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.WithDD(c.Request.Context(), zap.L()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
