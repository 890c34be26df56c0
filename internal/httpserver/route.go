package httpserver

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/product_api/internal/middleware/csrf"
	"github.com/Skotchmaster/product_api/internal/security"
)

const consolePrefix = "/h2-console"

type Deps struct {
	CatalogHandler *CatalogHTTP
	InfoHandler    *InfoHTTP
	AuthHandler    *AuthHTTP
	HealthHandler  *HealthHTTP
	// ConsoleHandler is nil when the console is disabled.
	ConsoleHandler *ConsoleHTTP
	Gate           *security.Gate
	SecureCookies  bool
}

func isConsole(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == consolePrefix || strings.HasPrefix(path, consolePrefix+"/")
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = newValidator()
	e.Renderer = newRenderer()

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		Skipper:            isConsole,
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))
	e.Use(d.Gate.Middleware())

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = d.SecureCookies
	csrfCfg.EnforceSameOrigin = false
	csrfCfg.Skipper = csrf.SkipPrefixes(consolePrefix, "/products")
	e.Use(csrf.Middleware(csrfCfg))

	e.GET("/", d.InfoHandler.Welcome)
	e.GET("/info", d.InfoHandler.Info)
	e.GET("/actuator/health", d.HealthHandler.Health)

	e.GET("/login", d.AuthHandler.LoginPage)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/logout", d.AuthHandler.LogoutPage)
	e.POST("/logout", d.AuthHandler.Logout)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	if d.ConsoleHandler != nil {
		console := e.Group(consolePrefix, middleware.SecureWithConfig(middleware.SecureConfig{
			ContentTypeNosniff: "nosniff",
		}))
		console.GET("", d.ConsoleHandler.Show)
		console.GET("/*", d.ConsoleHandler.Show)
	}
}
