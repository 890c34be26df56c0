package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_api/internal/logging"
	"github.com/Skotchmaster/product_api/internal/models"
)

// ConsoleHTTP serves a read-only view of the embedded database.
type ConsoleHTTP struct {
	DB *gorm.DB
}

type consolePage struct {
	Dialect  string
	Tables   []string
	Products []models.Product
}

func (h *ConsoleHTTP) Show(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "console.show")
	db := h.DB.WithContext(ctx)

	tables, err := db.Migrator().GetTables()
	if err != nil {
		l.Error("console_error", "status", 500, "reason", "cannot list tables", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list tables")
	}

	var products []models.Product
	if err := db.Order("id ASC").Find(&products).Error; err != nil {
		l.Error("console_error", "status", 500, "reason", "cannot read products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read products")
	}

	return c.Render(http.StatusOK, "console.html", consolePage{
		Dialect:  h.DB.Dialector.Name(),
		Tables:   tables,
		Products: products,
	})
}
