package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"draftforge/internal/domain"
	"draftforge/internal/httputil"
)

// handleError maps domain errors to envelope responses. A ConflictError
// additionally carries its suggested alternative name to the client.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		httputil.RespondConflict(w, conflict.Message, conflict.SuggestedName)
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
	default:
		logger.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
