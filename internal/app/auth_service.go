// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"

	"bookstore/internal/clock"
	"bookstore/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Authentication failures. The HTTP layer collapses all of them (except
// ErrForbidden) into an undifferentiated 401; the distinct values exist for
// logging only, so responses don't become an oracle for attackers.
var (
	// ErrInvalidCredentials indicates a wrong username or password at login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrMissingToken indicates the request carried no session cookie.
	ErrMissingToken = errors.New("missing session token")
	// ErrInvalidToken indicates the token failed decryption or parsing.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrSessionExpired indicates the token outlived its own deadline.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalidated indicates the subject logged out after the token
	// was issued, or no longer exists.
	ErrSessionInvalidated = errors.New("session invalidated")
	// ErrForbidden indicates the subject lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrEmptyCredentials indicates a blank username or password.
	ErrEmptyCredentials = errors.New("username and password are required")
	// ErrPasswordIncorrect indicates the old password check failed.
	ErrPasswordIncorrect = errors.New("old password is incorrect")
	// ErrSamePassword indicates the new password equals the old one.
	ErrSamePassword = errors.New("new password must differ from old password")
)

// AuthService authenticates requests and manages credentials. Sessions are
// stateless: the token itself carries the session, and the only server-side
// revocation state is the per-subject LastLogoutAt marker.
type AuthService struct {
	creds domain.CredentialRepository
	codec *SessionCodec
	clock clock.Clock
}

// NewAuthService creates an AuthService over the given credential store.
func NewAuthService(creds domain.CredentialRepository, codec *SessionCodec, clk clock.Clock) *AuthService {
	return &AuthService{creds: creds, codec: codec, clock: clk}
}

// Codec exposes the session codec for transports that set cookies.
func (s *AuthService) Codec() *SessionCodec {
	return s.codec
}

// Login verifies the password and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	cred, err := s.creds.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.codec.CreateToken(username, 0)
}

// Authenticate turns a raw token into an identity. It walks the gate's
// states in order: missing token, decrypt failure, expiry, then the
// logout-invalidation check against the credential record.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	payload := s.codec.VerifyToken(token)
	if payload == nil {
		return nil, ErrInvalidToken
	}
	if s.codec.IsExpired(payload) {
		return nil, ErrSessionExpired
	}

	cred, err := s.creds.Get(ctx, payload.Subject)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		// A deleted account must not retain a live session.
		return nil, ErrSessionInvalidated
	}
	if cred.LastLogoutAt != nil && cred.LastLogoutAt.UnixMilli() > payload.IssuedAt {
		return nil, ErrSessionInvalidated
	}

	return &domain.Identity{Subject: payload.Subject, Role: cred.Role}, nil
}

// RequireAdmin re-reads the subject's role and rejects everyone but admins.
// On success it returns the identity with the elevated role attached.
func (s *AuthService) RequireAdmin(ctx context.Context, subject string) (*domain.Identity, error) {
	cred, err := s.creds.Get(ctx, subject)
	if err != nil {
		return nil, err
	}
	if cred == nil || cred.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return &domain.Identity{Subject: subject, Role: domain.RoleAdmin}, nil
}

// Logout stamps LastLogoutAt, invalidating every token issued at or before
// now for the subject. Tokens issued strictly after remain valid: revocation
// is coarse, whole-subject only.
func (s *AuthService) Logout(ctx context.Context, subject string) error {
	return s.creds.SetLastLogoutAt(ctx, subject, s.clock.Now())
}

// Refresh issues a new token for an already authenticated subject. The old
// token stays cryptographically valid until its own expiry.
func (s *AuthService) Refresh(ctx context.Context, subject string) (string, error) {
	return s.codec.CreateToken(subject, 0)
}

// Register creates a credential with role user. Password strength policy is
// enforced upstream; only emptiness is rejected here.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}
	existing, err := s.creds.Get(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.creds.Create(ctx, domain.Credential{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    s.clock.Now(),
	})
}

// ChangePassword verifies the old password and stores a new hash. Existing
// sessions are left alive; the caller may follow up with Logout to revoke.
func (s *AuthService) ChangePassword(ctx context.Context, subject, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrEmptyCredentials
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}
	cred, err := s.creds.Get(ctx, subject)
	if err != nil {
		return err
	}
	if cred == nil {
		return domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrPasswordIncorrect
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.creds.SetPasswordHash(ctx, subject, string(hash))
}

// Role returns the subject's current role.
func (s *AuthService) Role(ctx context.Context, subject string) (domain.Role, error) {
	cred, err := s.creds.Get(ctx, subject)
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", domain.ErrUserNotFound
	}
	return cred.Role, nil
}

// LoginWithSubject issues a session for an externally authenticated subject
// (SSO). Unknown subjects are auto-provisioned with an unusable password
// hash so they can only ever log in through the identity provider.
func (s *AuthService) LoginWithSubject(ctx context.Context, username string) (string, error) {
	cred, err := s.creds.Get(ctx, username)
	if err != nil {
		return "", err
	}
	if cred == nil {
		err := s.creds.Create(ctx, domain.Credential{
			Username:  username,
			Role:      domain.RoleUser,
			CreatedAt: s.clock.Now(),
		})
		if err != nil && !errors.Is(err, domain.ErrUserExists) {
			// ErrUserExists means a concurrent provision won the race.
			return "", err
		}
	}
	return s.codec.CreateToken(username, 0)
}
