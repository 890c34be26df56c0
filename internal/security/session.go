package security

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionCookie = "SESSION"

var ErrSessionRevoked = errors.New("session revoked")

type SessionClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Sessions issues signed session tokens for form login and tracks the ones
// revoked by logout until they expire.
type Sessions struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewSessions(secret []byte, ttl time.Duration, secureCookie bool) *Sessions {
	return &Sessions{
		secret:       secret,
		ttl:          ttl,
		secureCookie: secureCookie,
		now:          time.Now,
		revoked:      make(map[string]time.Time),
	}
}

func (s *Sessions) Issue(p Principal) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		Roles: slices.Clone(p.Roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return token, exp, nil
}

func (s *Sessions) Parse(raw string) (*SessionClaims, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, errors.New("invalid session token")
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrSessionRevoked
	}
	return &claims, nil
}

// Principal resolves a session token to the principal it was issued for.
func (s *Sessions) Principal(raw string) (Principal, error) {
	claims, err := s.Parse(raw)
	if err != nil {
		return Principal{}, err
	}
	return Principal{Username: claims.Subject, Roles: claims.Roles}, nil
}

// Revoke invalidates a token. Tokens that do not parse are already unusable
// and are ignored.
func (s *Sessions) Revoke(raw string) {
	claims, err := s.Parse(raw)
	if err != nil {
		return
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
}

func (s *Sessions) Cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
