package entities

import "time"

// Account represents a board account. Accounts created through the bridge
// carry the (System, ExternalID) linkage back to the issuing system; that
// pair is the only mapping key. Usernames are display identity and may
// be rewritten on collision, so they are never used for lookup.
type Account struct {
	ID         string     `json:"id" db:"id"`
	Username   string     `json:"username" db:"username"`
	Email      string     `json:"email" db:"email"`
	FullName   string     `json:"full_name" db:"full_name"`
	System     string     `json:"system" db:"system"`           // issuing system tag
	ExternalID string     `json:"external_id" db:"external_id"` // stable ID at the issuing system
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	LastLogin  *time.Time `json:"last_login,omitempty" db:"last_login"`
}

// IdentityKey returns a formatted system+external_id string for logging
func (a *Account) IdentityKey() string {
	return a.System + ":" + a.ExternalID
}
