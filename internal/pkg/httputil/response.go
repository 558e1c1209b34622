package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/software-catalog/internal/pkg/logger"
)

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// JSON writes data with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: JSON encode failed", "error", err)
	}
}

func OK(w http.ResponseWriter, data any) { JSON(w, http.StatusOK, data) }

func Created(w http.ResponseWriter, data any) { JSON(w, http.StatusCreated, data) }

func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Unauthorized is what RequireAdmin answers for missing or non-admin
// sessions.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized")
}

// InternalError logs err and answers with a generic 500.
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("httputil: internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// TooManyRequests answers 429 with Retry-After rounded to whole seconds,
// at least one.
func TooManyRequests(w http.ResponseWriter, wait time.Duration, message string) {
	secs := int(wait.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	JSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:      fmt.Sprintf("%s, try again in %ds", message, secs),
		RetryAfter: secs,
	})
}

// BodyError answers a failed body read: 413 when http.MaxBytesReader cut
// it off, 400 otherwise.
func BodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Error(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	BadRequest(w, "could not read request body")
}

// Decode reads one JSON object from the request body into dst. An empty
// body, malformed JSON, or trailing data gets a 400; an oversized body a
// 413. It reports whether dst was filled.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("unexpected data after the JSON value")
	}
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		BadRequest(w, "request body is empty")
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			BodyError(w, err)
		} else {
			BadRequest(w, "invalid JSON: "+err.Error())
		}
	}
	return false
}
