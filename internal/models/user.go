package models

import "strings"

type User struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// UserPatch carries the optional fields of a partial user update.
// A nil field was omitted by the client; a blank one is treated the same way.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// NewEmail returns the email the patch would set, if any.
func (p UserPatch) NewEmail() (string, bool) {
	return present(p.Email)
}

// Apply merges the non-blank fields of the patch into u.
func (p UserPatch) Apply(u *User) {
	if name, ok := present(p.Name); ok {
		u.Name = name
	}
	if email, ok := present(p.Email); ok {
		u.Email = email
	}
}

func present(s *string) (string, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "", false
	}
	return *s, true
}
