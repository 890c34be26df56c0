package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticUsers map[string]Principal

func (u staticUsers) Authenticate(username, password string) (Principal, bool) {
	p, ok := u[username]
	if !ok || password != "pw" {
		return Principal{}, false
	}
	return p, true
}

func newGateEcho(t *testing.T) (*echo.Echo, *Sessions) {
	t.Helper()
	sessions := NewSessions([]byte("gate-secret"), time.Minute, false)
	g := &Gate{
		Users: staticUsers{
			"user":  {Username: "user", Roles: []string{RoleUser}},
			"guest": {Username: "guest", Roles: []string{"GUEST"}},
		},
		Sessions: sessions,
		Rules:    DefaultRules(),
	}

	e := echo.New()
	e.Use(g.Middleware())
	ok := func(c echo.Context) error {
		if p, found := PrincipalFrom(c); found {
			return c.String(http.StatusOK, p.Username)
		}
		return c.String(http.StatusOK, "anonymous")
	}
	e.GET("/", ok)
	e.GET("/info", ok)
	e.GET("/products", ok)
	e.GET("/other", ok)
	return e, sessions
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGate_PublicPaths(t *testing.T) {
	e, _ := newGateEcho(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/info", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestGate_AnonymousProtected(t *testing.T) {
	e, _ := newGateEcho(t)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="Realm"`, rec.Header().Get(echo.HeaderWWWAuthenticate))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(echo.HeaderAccept, "text/html,application/xhtml+xml")
	rec = serve(e, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestGate_Basic(t *testing.T) {
	e, _ := newGateEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.SetBasicAuth("user", "pw")
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.SetBasicAuth("guest", "pw")
	rec = serve(e, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/other", nil)
	req.SetBasicAuth("guest", "pw")
	rec = serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGate_BadBasicRejectedEverywhere(t *testing.T) {
	e, _ := newGateEcho(t)

	for _, path := range []string{"/", "/info", "/products"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.SetBasicAuth("user", "nope")
		req.Header.Set(echo.HeaderAccept, "text/html")
		rec := serve(e, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestGate_SessionCookie(t *testing.T) {
	e, sessions := newGateEcho(t)

	token, exp, err := sessions.Issue(Principal{Username: "user", Roles: []string{RoleUser}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(sessions.Cookie(token, exp))
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", rec.Body.String())

	sessions.Revoke(token)
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(sessions.Cookie(token, exp))
	rec = serve(e, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cleared := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookie && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "revoked session cookie should be cleared")
}
