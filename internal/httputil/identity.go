package httputil

import (
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/domain"
)

// UserID reads the caller identity from header. A missing header is a
// MissingHeader error; a value that is not a positive integer is a validation error.
func UserID(r *http.Request, header string) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(header))
	if raw == "" {
		return 0, domain.MissingHeader(header)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("header %s must be a positive integer, got %q", header, raw)
	}
	return id, nil
}

// OptionalUserID is UserID for endpoints where the identity is optional. It
// returns 0 when the header is absent.
func OptionalUserID(r *http.Request, header string) (int64, error) {
	if strings.TrimSpace(r.Header.Get(header)) == "" {
		return 0, nil
	}
	return UserID(r, header)
}

// PathID parses the mux variable name as an entity id.
func PathID(vars map[string]string, name string) (int64, error) {
	id, err := strconv.ParseInt(vars[name], 10, 64)
	if err != nil {
		return 0, domain.Validation("invalid %s: %q", name, vars[name])
	}
	return id, nil
}
