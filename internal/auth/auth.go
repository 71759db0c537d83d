// internal/auth/auth.go
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SessionSigner signs session ids for the session cookie
type SessionSigner struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// SessionToken is the decoded cookie payload
type SessionToken struct {
	SessionID string
	ExpiresAt int64
	IssuedAt  int64
}

// NewSessionSigner builds a signer. An empty secret gets a random 256-bit key.
func NewSessionSigner(secret string, expiration time.Duration) (*SessionSigner, error) {
	return NewSessionSignerWithClock(secret, expiration, time.Now)
}

// NewSessionSignerWithClock is NewSessionSigner with an explicit time source
func NewSessionSignerWithClock(secret string, expiration time.Duration, now func() time.Time) (*SessionSigner, error) {
	key := []byte(secret)
	if len(key) == 0 {
		generated, err := GenerateSecureKey(32)
		if err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
		key = generated
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &SessionSigner{secret: normalizeKey(key), expiration: expiration, now: now}, nil
}

// normalizeKey pads or truncates to 32 bytes
func normalizeKey(key []byte) []byte {
	out := make([]byte, 32)
	copy(out, key)
	return out
}

// Sign creates "<payload>.<signature>" for sessionID
func (s *SessionSigner) Sign(sessionID string) (string, error) {
	if sessionID == "" || strings.Contains(sessionID, "|") {
		return "", fmt.Errorf("invalid session id")
	}

	issued := s.now()
	payload := fmt.Sprintf("%s|%d|%d", sessionID, issued.Add(s.expiration).Unix(), issued.Unix())

	encodedPayload := base64.URLEncoding.EncodeToString([]byte(payload))
	encodedSignature := base64.URLEncoding.EncodeToString(s.mac([]byte(payload)))

	return encodedPayload + "." + encodedSignature, nil
}

// Verify checks signature and expiry and returns the decoded token
func (s *SessionSigner) Verify(tokenString string) (*SessionToken, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}

	payloadBytes, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid token payload: %w", err)
	}
	signatureBytes, err := base64.URLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token signature: %w", err)
	}

	if !hmac.Equal(signatureBytes, s.mac(payloadBytes)) {
		return nil, fmt.Errorf("invalid token signature")
	}

	fields := strings.Split(string(payloadBytes), "|")
	if len(fields) != 3 {
		return nil, fmt.Errorf("invalid payload format")
	}

	expiresAt, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry: %w", err)
	}
	issuedAt, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid issue time: %w", err)
	}

	if s.now().Unix() > expiresAt {
		return nil, fmt.Errorf("token has expired")
	}

	return &SessionToken{SessionID: fields[0], ExpiresAt: expiresAt, IssuedAt: issuedAt}, nil
}

// NeedsRefresh reports whether less than half of the token lifetime is left
func (s *SessionSigner) NeedsRefresh(token *SessionToken) bool {
	if token == nil {
		return true
	}
	remaining := token.ExpiresAt - s.now().Unix()
	return remaining < int64(s.expiration.Seconds())/2
}

// MaxAge is the cookie lifetime in seconds
func (s *SessionSigner) MaxAge() int {
	return int(s.expiration.Seconds())
}

func (s *SessionSigner) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(payload)
	return h.Sum(nil)
}

// GenerateSecureKey generates a secure random key for token signing
func GenerateSecureKey(length int) ([]byte, error) {
	if length <= 0 {
		length = 32
	}

	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
