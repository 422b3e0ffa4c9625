package httputil

import (
	"encoding/json"
	"net/http"
)

// Pagination is the listing metadata attached to paginated responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// Envelope is the uniform response shape: every endpoint, success or failure,
// returns this JSON object.
type Envelope struct {
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
	SuggestedName string      `json:"suggestedName,omitempty"`
	Pagination    *Pagination `json:"pagination,omitempty"`
}

// RespondData writes a success envelope with the given status code.
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	respond(w, status, Envelope{Success: true, Data: data})
}

// RespondPage writes a success envelope carrying pagination metadata.
func RespondPage(w http.ResponseWriter, data interface{}, pagination Pagination) {
	respond(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Pagination: &pagination,
	})
}

// RespondError writes a failure envelope.
func RespondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, Envelope{Success: false, Error: message})
}

// RespondConflict writes a failure envelope carrying a suggested alternative
// name alongside the conflict message.
func RespondConflict(w http.ResponseWriter, message, suggestedName string) {
	respond(w, http.StatusConflict, Envelope{
		Success:       false,
		Error:         message,
		SuggestedName: suggestedName,
	})
}

// respond marshals first so an encoding failure never produces a partial
// response after headers are sent.
func respond(w http.ResponseWriter, status int, envelope Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"failed to encode response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
