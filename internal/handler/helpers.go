package handler

import (
	"net/http"
	"strconv"
)

// pathParam reads one named path segment from a Go 1.22 route pattern.
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// queryInt reads an integer query parameter, falling back on absence or
// garbage.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
