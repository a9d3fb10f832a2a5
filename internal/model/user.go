package model

import "time"

// User represents an account in the system. The password and the one-time
// code fields are secrets and never leave the server in JSON.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password string `json:"-" gorm:"size:255;not null"`
	Verified bool   `json:"verified" gorm:"default:false"`

	// One-time codes, stored as HMAC signatures. Each purpose has its own
	// channel; writing a new code overwrites the previous one.
	VerificationCode            string     `json:"-" gorm:"size:64"`
	VerificationCodeExpiresAt   *time.Time `json:"-"`
	ForgotPasswordCode          string     `json:"-" gorm:"size:64"`
	ForgotPasswordCodeExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
