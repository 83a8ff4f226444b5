package models

import "time"

// Role distinguishes voters from administrators.
type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleVoter || r == RoleAdmin
}

// User is the identity carried by a signed-in session.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Name         string    `json:"name"`
	VoterID      string    `json:"voterId"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin is a small helper used by templates and guards.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DirectoryStatus is the account state shown in the admin user table.
type DirectoryStatus string

const (
	StatusActive    DirectoryStatus = "active"
	StatusSuspended DirectoryStatus = "suspended"
	StatusPending   DirectoryStatus = "pending"
)

// DirectoryUser is a row of the admin user-management table.
type DirectoryUser struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Role      Role            `json:"role"`
	Status    DirectoryStatus `json:"status"`
	LastLogin string          `json:"lastLogin"` // "Never" for accounts that have not signed in
	HasVoted  bool            `json:"hasVoted"`
}

// DirectoryFilter narrows the user table. Empty or "all" disables a filter.
type DirectoryFilter struct {
	Search string `json:"search"`
	Role   string `json:"role"`
	Status string `json:"status"`
}
