package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/travelmate/flightproxy/internal/models"
)

// HealthHandler reports liveness of this process only. The upstream provider
// is never contacted.
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    models.HealthStatusOK,
		Timestamp: time.Now().UTC(),
	})
}
