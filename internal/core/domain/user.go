package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStatus represents the account state.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is a registered marketplace participant (lender, borrower or insurer).
type User struct {
	ID            uuid.UUID  `json:"id"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"-"`
	PrimaryWallet string     `json:"primary_wallet"` // canonical form, unique
	Status        UserStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
