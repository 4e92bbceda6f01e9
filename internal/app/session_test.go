package app

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"bookstore/internal/clock"
)

func testCodec(t *testing.T, now time.Time) *SessionCodec {
	t.Helper()
	return NewSessionCodec("test-secret", 30*time.Minute, clock.NewFixed(now))
}

func TestSessionCodec_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(t, now)

	token, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	payload := codec.VerifyToken(token)
	if payload == nil {
		t.Fatal("expected payload, got nil")
	}
	if payload.Subject != "alice" {
		t.Errorf("expected subject 'alice', got %s", payload.Subject)
	}
	if payload.IssuedAt != now.UnixMilli() {
		t.Errorf("expected issuedAt %d, got %d", now.UnixMilli(), payload.IssuedAt)
	}
	want := now.Add(30 * time.Minute).UnixMilli()
	if payload.ExpiresAt != want {
		t.Errorf("expected expiresAt %d, got %d", want, payload.ExpiresAt)
	}
}

func TestSessionCodec_WireLayout(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(t, now)

	token, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not standard base64: %v", err)
	}

	plaintext, _ := json.Marshal(SessionPayload{
		Subject:   "alice",
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(30 * time.Minute).UnixMilli(),
	})
	want := nonceSize + tagSize + len(plaintext)
	if len(raw) != want {
		t.Errorf("expected %d raw bytes (nonce+tag+ciphertext), got %d", want, len(raw))
	}
}

func TestSessionCodec_FreshNoncePerToken(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(t, now)

	a, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a == b {
		t.Error("two tokens for the same payload should not be identical")
	}
	if codec.VerifyToken(a) == nil || codec.VerifyToken(b) == nil {
		t.Error("both tokens should verify")
	}
}

func TestSessionCodec_TamperedTokenRejected(t *testing.T) {
	codec := testCodec(t, time.Now())

	token, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(token)

	for _, pos := range []int{0, nonceSize, nonceSize + tagSize, len(raw) - 1} {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[pos] ^= 0x01
		if codec.VerifyToken(base64.StdEncoding.EncodeToString(flipped)) != nil {
			t.Errorf("token with bit flipped at byte %d should be rejected", pos)
		}
	}
}

func TestSessionCodec_MalformedTokenRejected(t *testing.T) {
	codec := testCodec(t, time.Now())

	cases := []string{
		"",
		"not!!base64",
		base64.StdEncoding.EncodeToString([]byte("short")),
		base64.StdEncoding.EncodeToString(make([]byte, nonceSize+tagSize)), // no ciphertext
	}
	for _, c := range cases {
		if codec.VerifyToken(c) != nil {
			t.Errorf("expected nil for malformed token %q", c)
		}
	}
}

func TestSessionCodec_WrongKeyRejected(t *testing.T) {
	now := time.Now()
	codec := testCodec(t, now)
	other := NewSessionCodec("different-secret", 30*time.Minute, clock.NewFixed(now))

	token, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if other.VerifyToken(token) != nil {
		t.Error("token sealed under one secret should not verify under another")
	}
}

func TestSessionCodec_MissingFieldRejected(t *testing.T) {
	codec := testCodec(t, time.Now())

	// Seal a payload without the expiry field using the codec's own AEAD.
	gcm, err := codec.aead()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	plaintext := []byte(`{"username":"alice","create_at":1}`)
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	ciphertext, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	packed := append(append(append([]byte{}, nonce...), tag...), ciphertext...)
	if codec.VerifyToken(base64.StdEncoding.EncodeToString(packed)) != nil {
		t.Error("payload missing a required field should be rejected")
	}
}

func TestSessionCodec_IsExpired(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := testCodec(t, issued)

	token, err := codec.CreateToken("alice", time.Minute)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	payload := codec.VerifyToken(token)
	if payload == nil {
		t.Fatal("expected payload, got nil")
	}

	if codec.IsExpired(payload) {
		t.Error("token should not be expired at issue time")
	}

	late := NewSessionCodec("test-secret", 30*time.Minute, clock.NewFixed(issued.Add(2*time.Minute)))
	if !late.IsExpired(payload) {
		t.Error("token should be expired after its deadline")
	}
}

func TestSessionCodec_DefaultTTL(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := NewSessionCodec("test-secret", 0, clock.NewFixed(now))

	if codec.TTL() != DefaultSessionTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultSessionTTL, codec.TTL())
	}

	token, err := codec.CreateToken("alice", 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	payload := codec.VerifyToken(token)
	if payload == nil {
		t.Fatal("expected payload, got nil")
	}
	want := now.Add(DefaultSessionTTL).UnixMilli()
	if payload.ExpiresAt != want {
		t.Errorf("expected expiresAt %d, got %d", want, payload.ExpiresAt)
	}
}
