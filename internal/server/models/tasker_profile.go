package models

import "time"

// TaskerProfile is the service-provider side of a user. Exactly one per
// tasker; removed together with its user.
type TaskerProfile struct {
	ID               int64
	UserID           string
	Skills           []string
	ExperienceLevel  string
	HourlyRate       float64
	SelectedCategory string
	CategoryID       int64
	CreatedAt        time.Time
}
