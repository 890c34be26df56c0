package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *Sessions) revokedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.revoked)
}

func TestSessions_IssueAndParse(t *testing.T) {
	s := NewSessions([]byte("test-secret"), 30*time.Minute, false)

	token, exp, err := s.Issue(Principal{Username: "admin", Roles: []string{RoleAdmin, RoleUser}})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	p, err := s.Principal(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)
	assert.Equal(t, []string{RoleAdmin, RoleUser}, p.Roles)
}

func TestSessions_RejectsForeignAndExpired(t *testing.T) {
	s := NewSessions([]byte("test-secret"), 30*time.Minute, false)
	other := NewSessions([]byte("other-secret"), 30*time.Minute, false)

	token, _, err := other.Issue(Principal{Username: "user"})
	require.NoError(t, err)
	_, err = s.Parse(token)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := s.Issue(Principal{Username: "user"})
	require.NoError(t, err)
	s.now = time.Now
	_, err = s.Parse(old)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = s.Parse("not-a-token")
	require.Error(t, err)
}

func TestSessions_Revoke(t *testing.T) {
	s := NewSessions([]byte("test-secret"), 30*time.Minute, false)

	token, _, err := s.Issue(Principal{Username: "user", Roles: []string{RoleUser}})
	require.NoError(t, err)

	s.Revoke(token)
	_, err = s.Parse(token)
	require.ErrorIs(t, err, ErrSessionRevoked)

	s.Revoke("garbage")
	assert.Equal(t, 1, s.revokedCount())
}

func TestSessions_RevokePrunesExpired(t *testing.T) {
	s := NewSessions([]byte("test-secret"), time.Minute, false)

	first, _, err := s.Issue(Principal{Username: "user"})
	require.NoError(t, err)
	s.Revoke(first)

	later := time.Now().Add(2 * time.Minute)
	s.now = func() time.Time { return later }
	second, _, err := s.Issue(Principal{Username: "user"})
	require.NoError(t, err)
	s.Revoke(second)

	assert.Equal(t, 1, s.revokedCount())
}

func TestSessions_Cookies(t *testing.T) {
	s := NewSessions([]byte("k"), time.Minute, true)
	exp := time.Now().Add(time.Minute)

	ck := s.Cookie("v", exp)
	assert.Equal(t, SessionCookie, ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)

	cleared := s.ClearCookie()
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}
