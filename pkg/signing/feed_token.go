package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid feed token")
	// ErrExpiredToken is returned for a well-signed token past its expiry.
	ErrExpiredToken = errors.New("feed token expired")
)

// FeedScope narrows a calendar feed to a unit and/or professional. Empty fields mean "all".
type FeedScope struct {
	UnitID         string
	ProfessionalID string
}

// FeedSigner issues and verifies HMAC tokens for unauthenticated calendar feed URLs.
type FeedSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewFeedSigner constructs a signer with the provided secret and TTL.
func NewFeedSigner(secret string, ttl time.Duration) *FeedSigner {
	if ttl <= 0 {
		ttl = 90 * 24 * time.Hour
	}
	return &FeedSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token of the form scope.expiry.signature.
func (s *FeedSigner) Generate(scope FeedScope) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	if strings.Contains(scope.UnitID, "|") || strings.Contains(scope.ProfessionalID, "|") {
		return "", time.Time{}, fmt.Errorf("scope ids must not contain '|'")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(scope.UnitID + "|" + scope.ProfessionalID))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	return strings.Join([]string{encoded, ts, s.sign(encoded, ts)}, "."), expiresAt, nil
}

// Parse validates a token and returns its scope. A signer without a secret accepts nothing.
func (s *FeedSigner) Parse(token string) (FeedScope, time.Time, error) {
	if len(s.secret) == 0 {
		return FeedScope{}, time.Time{}, ErrInvalidToken
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return FeedScope{}, time.Time{}, ErrInvalidToken
	}
	encoded, ts, signature := parts[0], parts[1], parts[2]

	if !hmac.Equal([]byte(s.sign(encoded, ts)), []byte(signature)) {
		return FeedScope{}, time.Time{}, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return FeedScope{}, time.Time{}, ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return FeedScope{}, time.Time{}, ErrInvalidToken
	}
	unit, professional, ok := strings.Cut(string(raw), "|")
	if !ok {
		return FeedScope{}, time.Time{}, ErrInvalidToken
	}

	expiresAt := time.Unix(expUnix, 0)
	if s.now().After(expiresAt) {
		return FeedScope{}, expiresAt, ErrExpiredToken
	}
	return FeedScope{UnitID: unit, ProfessionalID: professional}, expiresAt, nil
}

func (s *FeedSigner) sign(encoded, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(encoded + "|" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
