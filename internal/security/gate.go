package security

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_api/internal/logging"
)

const basicChallenge = `Basic realm="Realm"`

type Authenticator interface {
	Authenticate(username, password string) (Principal, bool)
}

// Gate authenticates every request and enforces the first matching rule.
type Gate struct {
	Users    Authenticator
	Sessions *Sessions
	Rules    []Rule
}

func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := logging.FromContext(req.Context()).With("component", "security.gate")

			authz := req.Header.Get(echo.HeaderAuthorization)
			var principal *Principal

			if hasBasicScheme(authz) {
				username, password, ok := req.BasicAuth()
				if !ok {
					l.Warn("auth_error", "status", 401, "reason", "malformed basic credentials")
					return challenge(c)
				}
				p, ok := g.Users.Authenticate(username, password)
				if !ok {
					l.Warn("auth_error", "status", 401, "reason", "bad credentials", "username", username)
					return challenge(c)
				}
				principal = &p
			} else if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" && g.Sessions != nil {
				p, err := g.Sessions.Principal(ck.Value)
				if err != nil {
					l.Info("session_rejected", "reason", "invalid session cookie", "error", err)
					c.SetCookie(g.Sessions.ClearCookie())
				} else {
					principal = &p
				}
			}

			if principal != nil {
				c.Set(PrincipalKey, *principal)
			}

			access := Resolve(g.Rules, req.URL.Path)
			if access.Public() {
				return next(c)
			}

			if principal == nil {
				if authz == "" && acceptsHTML(req) {
					return c.Redirect(http.StatusFound, "/login")
				}
				l.Warn("auth_error", "status", 401, "reason", "authentication required")
				return challenge(c)
			}

			if !access.Allows(*principal) {
				l.Warn("auth_error", "status", 403, "reason", "missing role", "username", principal.Username)
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}

			return next(c)
		}
	}
}

func challenge(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, basicChallenge)
	return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}

func hasBasicScheme(authz string) bool {
	scheme, _, _ := strings.Cut(authz, " ")
	return strings.EqualFold(scheme, "basic")
}

func acceptsHTML(req *http.Request) bool {
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}
