package models

import "time"

// LoginEvent records one successful login.
type LoginEvent struct {
	ID        string
	AccountID string
	LoginTime time.Time
}

// FieldChangeEvent records a changed email or password. Password values are
// always masked.
type FieldChangeEvent struct {
	ID           string
	AccountID    string
	FieldChanged string
	OldValue     string
	NewValue     string
	ChangedAt    time.Time
}

// ResetEvent records a password reset and how it was initiated.
type ResetEvent struct {
	ID          string
	AccountID   string
	ResetMethod string
	ResetAt     time.Time
}
