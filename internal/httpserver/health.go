package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/product_api/internal/logging"
)

const (
	statusUp   = "UP"
	statusDown = "DOWN"
)

type HealthHTTP struct {
	DB *gorm.DB
}

type healthComponent struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]healthComponent `json:"components"`
}

func (h *HealthHTTP) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	details := map[string]any{"database": h.DB.Dialector.Name()}
	db := healthComponent{Status: statusUp, Details: details}

	if err := h.ping(ctx); err != nil {
		logging.FromContext(ctx).Error("health_check_error", "status", 503, "reason", "database ping failed", "error", err)
		details["error"] = err.Error()
		db.Status = statusDown
		return c.JSON(http.StatusServiceUnavailable, healthResponse{
			Status:     statusDown,
			Components: map[string]healthComponent{"db": db},
		})
	}

	return c.JSON(http.StatusOK, healthResponse{
		Status:     statusUp,
		Components: map[string]healthComponent{"db": db},
	})
}

func (h *HealthHTTP) ping(ctx context.Context) error {
	sqlDB, err := h.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
