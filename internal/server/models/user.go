package models

import (
	"strings"
	"time"
)

type User struct {
	ID                 string
	UserName           string
	NormalizedUserName string
	Email              string
	NormalizedEmail    string
	FullName           string
	PasswordHash       string
	IsTasker           bool
	SecurityStamp      string
	CreatedAt          time.Time
}

// Normalize is the canonical form used for lookups and uniqueness of user
// names, emails and role names.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
