package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"slices"

	"github.com/Skotchmaster/product_api/internal/hash"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	Username     string
	PasswordHash string
	Roles        []string
}

// UserStore is built once and never mutated, so it is safe for concurrent use.
type UserStore struct {
	users     map[string]User
	dummyHash string
}

func NewUserStore(users ...User) (*UserStore, error) {
	// unknown usernames are checked against this hash so the response time
	// does not reveal whether the account exists
	dummy, err := hash.HashPassword(rand.Text())
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	m := make(map[string]User, len(users))
	for _, u := range users {
		if _, dup := m[u.Username]; dup {
			return nil, fmt.Errorf("duplicate user %q", u.Username)
		}
		u.Roles = slices.Clone(u.Roles)
		m[u.Username] = u
	}
	return &UserStore{users: m, dummyHash: dummy}, nil
}

// DefaultUsers returns the two built-in accounts with freshly hashed passwords.
func DefaultUsers() ([]User, error) {
	userHash, err := hash.HashPassword("password")
	if err != nil {
		return nil, fmt.Errorf("hash password for user: %w", err)
	}
	adminHash, err := hash.HashPassword("admin")
	if err != nil {
		return nil, fmt.Errorf("hash password for admin: %w", err)
	}
	return []User{
		{Username: "user", PasswordHash: userHash, Roles: []string{RoleUser}},
		{Username: "admin", PasswordHash: adminHash, Roles: []string{RoleAdmin, RoleUser}},
	}, nil
}

func (s *UserStore) Authenticate(username, password string) (Principal, bool) {
	u, found := s.users[username]
	h := s.dummyHash
	if found {
		h = u.PasswordHash
	}
	if !hash.CheckPassword(h, password) || !found {
		return Principal{}, false
	}
	return Principal{Username: u.Username, Roles: slices.Clone(u.Roles)}, true
}

// NewRandomSecret is used to sign sessions when no secret is configured.
func NewRandomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return []byte(base64.RawURLEncoding.EncodeToString(b)), nil
}
