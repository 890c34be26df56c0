package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/middleware/csrf"
	"github.com/Skotchmaster/product_api/internal/security"
)

// AuthHTTP serves the form login and logout pages.
type AuthHTTP struct {
	Users    security.Authenticator
	Sessions *security.Sessions
}

type loginPage struct {
	CSRFToken string
	Error     bool
	LoggedOut bool
}

type logoutPage struct {
	CSRFToken string
}

func csrfToken(c echo.Context) string {
	tok, _ := c.Get(csrf.ContextKey).(string)
	return tok
}

func (h *AuthHTTP) LoginPage(c echo.Context) error {
	q := c.QueryParams()
	_, failed := q["error"]
	_, loggedOut := q["logout"]
	return c.Render(http.StatusOK, "login.html", loginPage{
		CSRFToken: csrfToken(c),
		Error:     failed,
		LoggedOut: loggedOut,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	username := c.FormValue("username")
	p, ok := h.Users.Authenticate(username, c.FormValue("password"))
	if !ok {
		l.Warn("login_error", "status", 302, "reason", "bad credentials", "username", username)
		return c.Redirect(http.StatusFound, "/login?error")
	}

	token, exp, err := h.Sessions.Issue(p)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue session")
	}
	c.SetCookie(h.Sessions.Cookie(token, exp))

	l.Info("login_success", "username", p.Username)
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHTTP) LogoutPage(c echo.Context) error {
	return c.Render(http.StatusOK, "logout.html", logoutPage{CSRFToken: csrfToken(c)})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.logout")

	if ck, err := c.Cookie(security.SessionCookie); err == nil && ck.Value != "" {
		h.Sessions.Revoke(ck.Value)
	}
	c.SetCookie(h.Sessions.ClearCookie())

	l.Info("logout_success")
	return c.Redirect(http.StatusFound, "/login?logout")
}
