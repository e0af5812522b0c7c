// Package models defines the core data structures for accounts, tokens
// and portfolio records.
package models

import "time"

// Role is the authorization level of an account.
type Role string

const (
	// RoleUser is the default role assigned at signup.
	RoleUser Role = "USER"
	// RoleAdmin grants access to admin-only routes.
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an application account with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the unique login of the user.
	Email string
	// PasswordHash is the bcrypt digest of the user's password.
	PasswordHash string
	// Firstname is the user's given name.
	Firstname string
	// Lastname is the user's family name.
	Lastname string
	// Role is the authorization level of the user.
	Role Role
	// IsFirstLogin is true until the account is used for the first time.
	IsFirstLogin bool
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time
	// UpdatedAt is the last modification timestamp.
	UpdatedAt time.Time
}

// UserSummary is the public projection of a User. It never carries the hash.
type UserSummary struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Role      Role   `json:"role"`
}

// Summary returns the public projection of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Role:      u.Role,
	}
}

// Claims is the decoded identity payload of a bearer token.
type Claims struct {
	// Email of the account the token was issued to.
	Email string
	// Subject is the account id.
	Subject string
	// Role at issuance time.
	Role Role
	// IssuedAt is the issuance timestamp.
	IssuedAt time.Time
	// ExpiresAt is the moment the token stops verifying.
	ExpiresAt time.Time
}

// Identity is a verified account resolved from a token by the auth guard.
type Identity struct {
	ID    string
	Email string
	Role  Role
}
