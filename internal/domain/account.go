package domain

import "time"

// Account is an administrator account eligible to receive outbreak
// notifications. Account management is owned elsewhere; the engine only
// lists active administrators.
type Account struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Notification is an in-platform message persisted for one recipient.
// Outbreak notifications are deduplicated per (recipient, title) within a
// rolling lookback window before insertion.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
