package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookstore/internal/domain"
)

// Get retrieves a credential with its ordered event refs. Returns nil when
// the subject does not exist.
func (d *DB) Get(ctx context.Context, username string) (*domain.Credential, error) {
	var (
		cred         domain.Credential
		lastLogoutAt sql.NullTime
	)
	err := d.sql.QueryRowContext(ctx,
		`SELECT username, password_hash, role, last_logout_at, created_at FROM credentials WHERE username = $1`,
		username,
	).Scan(&cred.Username, &cred.PasswordHash, &cred.Role, &lastLogoutAt, &cred.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastLogoutAt.Valid {
		t := lastLogoutAt.Time
		cred.LastLogoutAt = &t
	}

	rows, err := d.sql.QueryContext(ctx,
		`SELECT event_id FROM credential_event_refs WHERE username = $1 ORDER BY id`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		cred.EventRefs = append(cred.EventRefs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Create inserts a new credential.
func (d *DB) Create(ctx context.Context, cred domain.Credential) error {
	var lastLogoutAt any
	if cred.LastLogoutAt != nil {
		lastLogoutAt = cred.LastLogoutAt.UTC()
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO credentials (username, password_hash, role, last_logout_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		cred.Username, cred.PasswordHash, cred.Role, lastLogoutAt, cred.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return domain.ErrUserExists
	}
	return err
}

// SetLastLogoutAt stamps the coarse revocation marker.
func (d *DB) SetLastLogoutAt(ctx context.Context, username string, t time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE credentials SET last_logout_at = $2 WHERE username = $1`,
		username, t.UTC(),
	)
	return err
}

// AppendEventRef appends an event reference to the subject's list.
func (d *DB) AppendEventRef(ctx context.Context, username, eventID string) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO credential_event_refs (username, event_id) VALUES ($1, $2)`,
		username, eventID,
	)
	return err
}

// SetPasswordHash replaces the stored password hash.
func (d *DB) SetPasswordHash(ctx context.Context, username, hash string) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE credentials SET password_hash = $2 WHERE username = $1`,
		username, hash,
	)
	return err
}
