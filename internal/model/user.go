// Package model defines the data structures used throughout the application.
package model

import "time"

// Role values assignable to a user. New accounts start as RoleUser;
// moderation endpoints require RoleAdmin on the stored record, not on
// anything the client sends.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account.
//
// Email is the external identity: tokens carry it as their subject claim and
// posts reference their owner by it. The internal xid is still the primary
// key so records can be addressed without URL-encoding an email address.
//
// PasswordHash is never serialized; the json:"-" tag keeps it out of every
// API response. It is empty for accounts registered without a password.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	Role         string    `json:"role"      db:"role"`
	Badges       []string  `json:"badges"    db:"badges"`
	AvatarURL    string    `json:"avatarUrl" db:"avatar_url"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// HasBadge reports whether the user has already been awarded the named badge.
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}
