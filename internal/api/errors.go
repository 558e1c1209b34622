package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/software-catalog/internal/assist"
	"github.com/ignite/software-catalog/internal/pkg/httputil"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/rowsource"
	"github.com/ignite/software-catalog/internal/service/catalog"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
	"github.com/ignite/software-catalog/internal/worker"
)

// statusFor maps service sentinel errors to HTTP status codes. Anything
// unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalogimport.ErrNoData),
		errors.Is(err, catalogimport.ErrInvalidInput),
		errors.Is(err, catalogimport.ErrTooManyRows),
		errors.Is(err, rowsource.ErrUnsupportedFormat),
		errors.Is(err, rowsource.ErrNoHeader),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, assist.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, worker.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, assist.ErrDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError sends {"error": ...}. Client errors carry the error text;
// server errors are logged in full and answered with a generic message so
// database details never reach the browser.
func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code < http.StatusInternalServerError || code == http.StatusServiceUnavailable {
		httputil.Error(w, code, err.Error())
		return
	}
	logger.Error("api: request failed", "status", code, "error", err)
	httputil.Error(w, code, publicMessage(err))
}

func publicMessage(err error) string {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "dial tcp"):
		return "service temporarily unavailable"
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "context canceled"):
		return "request timed out"
	case strings.Contains(msg, "pq:"),
		strings.Contains(msg, "sql"):
		return "a database error occurred"
	}
	return "internal server error"
}
