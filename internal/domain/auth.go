// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Role classifies what a subject may do.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleTest  Role = "test"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleTest
}

// Credential is the per-subject authentication record. EventRefs is the
// append-only, ordered list of ledger events recorded for the subject;
// LastLogoutAt is mutated only by logout.
type Credential struct {
	Username     string
	PasswordHash string
	Role         Role
	LastLogoutAt *time.Time
	EventRefs    []string
	CreatedAt    time.Time
}

// Identity is the authenticated principal attached to a request.
type Identity struct {
	Subject string
	Role    Role
}

// CredentialRepository is the port for credential persistence.
type CredentialRepository interface {
	Get(ctx context.Context, username string) (*Credential, error)
	Create(ctx context.Context, cred Credential) error
	SetLastLogoutAt(ctx context.Context, username string, t time.Time) error
	AppendEventRef(ctx context.Context, username, eventID string) error
	SetPasswordHash(ctx context.Context, username, hash string) error
}
