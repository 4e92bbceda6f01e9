package app

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"bookstore/internal/clock"
)

const (
	nonceSize = 12
	tagSize   = 16

	// DefaultSessionTTL applies when no TTL is configured or requested.
	DefaultSessionTTL = 30 * time.Minute
)

// SessionPayload is the plaintext carried inside a session token.
// The JSON keys and their order are part of the wire format.
type SessionPayload struct {
	Subject   string `json:"username"`
	IssuedAt  int64  `json:"create_at"` // epoch ms
	ExpiresAt int64  `json:"timeout"`   // epoch ms
}

// SessionCodec seals session payloads into opaque bearer tokens and opens
// them again. Tokens are AES-256-GCM encrypted with a key derived by hashing
// the configured secret, so no session state is kept server-side. The wire
// format is base64(nonce[12] | tag[16] | ciphertext) with a fresh random
// nonce per token, so identical payloads never encrypt alike.
type SessionCodec struct {
	key   [32]byte
	ttl   time.Duration
	clock clock.Clock
}

// NewSessionCodec derives the AEAD key from secret. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewSessionCodec(secret string, ttl time.Duration, clk clock.Clock) *SessionCodec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionCodec{
		key:   sha256.Sum256([]byte(secret)),
		ttl:   ttl,
		clock: clk,
	}
}

// TTL returns the codec's default token lifetime.
func (c *SessionCodec) TTL() time.Duration {
	return c.ttl
}

// CreateToken issues a token for subject expiring after ttl. A non-positive
// ttl uses the codec default.
func (c *SessionCodec) CreateToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	now := c.clock.Now()
	payload := SessionPayload{
		Subject:   subject,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	gcm, err := c.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	packed := make([]byte, 0, nonceSize+len(sealed))
	packed = append(packed, nonce...)
	packed = append(packed, tag...)
	packed = append(packed, ciphertext...)
	return base64.StdEncoding.EncodeToString(packed), nil
}

// VerifyToken opens a token and returns its payload, or nil for any
// malformed, truncated, or tampered input. It never returns an error:
// every failure is collapsed into the invalid sentinel so the caller
// cannot distinguish why a token was rejected.
func (c *SessionCodec) VerifyToken(token string) *SessionPayload {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	if len(raw) < nonceSize+tagSize+1 {
		return nil
	}
	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ciphertext := raw[nonceSize+tagSize:]

	gcm, err := c.aead()
	if err != nil {
		return nil
	}

	// Go's GCM expects the tag appended to the ciphertext.
	sealed := make([]byte, 0, len(ciphertext)+tagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil
	}

	// All three fields must be present with the right types.
	var probe struct {
		Subject   *string `json:"username"`
		IssuedAt  *int64  `json:"create_at"`
		ExpiresAt *int64  `json:"timeout"`
	}
	if err := json.Unmarshal(plaintext, &probe); err != nil {
		return nil
	}
	if probe.Subject == nil || probe.IssuedAt == nil || probe.ExpiresAt == nil {
		return nil
	}
	return &SessionPayload{
		Subject:   *probe.Subject,
		IssuedAt:  *probe.IssuedAt,
		ExpiresAt: *probe.ExpiresAt,
	}
}

// IsExpired reports whether the payload's deadline has passed.
func (c *SessionCodec) IsExpired(p *SessionPayload) bool {
	return c.clock.Now().UnixMilli() > p.ExpiresAt
}

func (c *SessionCodec) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
