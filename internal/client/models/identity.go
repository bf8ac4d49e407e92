// Package models holds the documents the identity CLI exchanges with the server.
package models

import "time"

type TaskerProfile struct {
	Skills           []string `json:"skills"`
	ExperienceLevel  string   `json:"experienceLevel"`
	HourlyRate       float64  `json:"hourlyRate"`
	SelectedCategory string   `json:"selectedCategory"`
	CategoryID       int64    `json:"categoryId"`
}

// Identity is the caller's view of a verified token.
type Identity struct {
	ID        string         `json:"id"`
	UserName  string         `json:"userName"`
	Email     string         `json:"email"`
	TokenID   string         `json:"tokenId"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Roles     []string       `json:"roles"`
	Profile   *TaskerProfile `json:"profile,omitempty"`
}

type TaskerRegistration struct {
	UserName         string   `json:"userName"`
	Email            string   `json:"email"`
	FullName         string   `json:"fullName"`
	Password         string   `json:"password"`
	Skills           []string `json:"skills"`
	ExperienceLevel  string   `json:"experienceLevel"`
	HourlyRate       float64  `json:"hourlyRate"`
	SelectedCategory string   `json:"selectedCategory"`
	CategoryID       int64    `json:"categoryId"`
}
