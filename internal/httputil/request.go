package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"draftforge/internal/config"
)

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	// Limit request body size (requires w for proper 413 response)
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodyBytes)

	decoder := json.NewDecoder(r.Body)
	// DisallowUnknownFields() is intentionally NOT used so clients can send
	// extra fields. Validation is performed downstream via domain validators.

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
