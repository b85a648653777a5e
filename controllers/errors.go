package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"train-booking-backend/services"
	"train-booking-backend/utils"
)

type errorBody struct {
	Timestamp   time.Time         `json:"timestamp"`
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeError(c *gin.Context, status int, message string, fields map[string]string) {
	utils.JSONError(c, status, errorBody{
		Timestamp:   time.Now().UTC(),
		Status:      status,
		Error:       http.StatusText(status),
		Message:     message,
		Path:        c.Request.URL.Path,
		FieldErrors: fields,
	})
}

// respondError maps service errors onto status codes. Unexpected errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	var (
		fe services.FieldErrors
		ve *services.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		writeError(c, http.StatusBadRequest, "Validation failed", fe)
	case errors.As(err, &ve):
		writeError(c, http.StatusBadRequest, ve.Message, nil)
	case errors.Is(err, services.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrConflict):
		writeError(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, "Invalid username/email or password", nil)
	default:
		utils.Log(c.Request.Context()).WithError(err).Error("unhandled error")
		writeError(c, http.StatusInternalServerError, "An unexpected error occurred", nil)
	}
}

// bindJSON decodes the request body, answering 400 itself when it cannot.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, malformedMessage(err), nil)
		return false
	}
	return true
}

func malformedMessage(err error) string {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is required"
	case errors.As(err, &syntaxErr):
		return "Malformed JSON request"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Invalid value for field %s", typeErr.Field)
	default:
		return "Malformed JSON request"
	}
}

// uintParam reads a positive integer path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", name, raw), nil)
		return 0, false
	}
	return uint(n), true
}

func uintQuery(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %q", name, raw), nil)
		return 0, false
	}
	return uint(n), true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %q", name, raw), nil)
		return 0, false
	}
	return n, true
}

// requireQuery reads a non-empty query parameter.
func requireQuery(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("Query parameter %s is required", name), nil)
		return "", false
	}
	return v, true
}

// reply answers 200 with data, or the mapped error.
func reply(c *gin.Context, data any, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, data)
}
