package handlers

import (
	"net/http"

	"tabletrack/internal/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByKind = map[apperrors.Kind]int{
	apperrors.NotFound:           http.StatusNotFound,
	apperrors.InvalidInput:       http.StatusBadRequest,
	apperrors.Conflict:           http.StatusConflict,
	apperrors.PreconditionFailed: http.StatusBadRequest,
	apperrors.Unauthorized:       http.StatusUnauthorized,
	apperrors.Forbidden:          http.StatusForbidden,
	apperrors.Internal:           http.StatusInternalServerError,
}

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	if status, ok := statusByKind[apperrors.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, log *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperrors.MessageOf(err), "kind": kind})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "kind": apperrors.InvalidInput})
}
