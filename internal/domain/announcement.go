package domain

import "time"

// Announcement is a news item shown on the dashboard.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// CreatedBy is the author's username, not an ID.
	CreatedBy string `json:"createdBy"`
}
