package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/jayp5545/skillbridge-ai/internal/apperr"
)

type APIError struct {
  Message string `json:"message"`
  Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}

// RespondAppError maps the service error vocabulary onto HTTP statuses.
// ErrDuplicateEffect is not an error to the client: the requested state
// already holds, so it answers 200.
func RespondAppError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, apperr.ErrDuplicateEffect):
    c.JSON(http.StatusOK, gin.H{"success": true, "already_applied": true})
  case errors.Is(err, apperr.ErrNotFound):
    RespondError(c, http.StatusNotFound, "not_found", err)
  case errors.Is(err, apperr.ErrOutOfRange):
    RespondError(c, http.StatusBadRequest, "out_of_range", err)
  case errors.Is(err, apperr.ErrPreconditionFailed):
    RespondError(c, http.StatusConflict, "precondition_failed", err)
  case errors.Is(err, apperr.ErrGenerationInvalid):
    RespondError(c, http.StatusUnprocessableEntity, "generation_invalid", err)
  case errors.Is(err, apperr.ErrStoreUnavailable):
    RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
  default:
    RespondError(c, http.StatusInternalServerError, "internal", err)
  }
}
