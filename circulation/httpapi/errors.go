package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AntonStoeckl/library-circulation-go/circulation/core"
	"github.com/AntonStoeckl/library-circulation-go/circulation/shell"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore"
	"github.com/AntonStoeckl/library-circulation-go/ledgerstore/restengine"
)

// StatusFor maps a handler error onto an HTTP status.
func StatusFor(err error) int {
	if kind, ok := core.KindOf(err); ok {
		switch kind {
		case core.NotFound:
			return http.StatusNotFound
		case core.Unavailable, core.AlreadyProcessed, core.InUse:
			return http.StatusConflict
		case core.LimitExceeded:
			return http.StatusUnprocessableEntity
		case core.ValidationError:
			return http.StatusBadRequest
		}
	}

	switch {
	case errors.Is(err, ledgerstore.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case shell.IsStorageError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	kind, _ := core.KindOf(err)

	if status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "status", status, "error", err.Error(), ctxKeyRequestID, c.GetString(ctxKeyRequestID))
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	abortWithError(c, status, message, string(kind))
}

func abortWithError(c *gin.Context, status int, message, kind string) {
	c.AbortWithStatusJSON(status, restengine.ErrorBody{Error: message, Kind: kind})
}
