package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pullscope/pullscope/pkg/core"
)

// statusFor maps a domain error to its HTTP status, per spec.md §7's
// error taxonomy.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrReportNotFound), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrUpstreamQuery):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrPaginationStalled):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrCanceled):
		return http.StatusConflict
	case errors.Is(err, core.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
