package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/travelmate/flightproxy/internal/logging"
	"github.com/travelmate/flightproxy/internal/models"
)

const errInvalidQuery = "Nieprawidłowe parametry zapytania"

type searcher interface {
	Search(ctx context.Context, query models.SearchQuery) (int, models.Envelope)
}

type SearchHandler struct {
	service searcher
}

func NewSearchHandler(s searcher) *SearchHandler {
	return &SearchHandler{service: s}
}

func (h *SearchHandler) Search(c echo.Context) error {
	var query models.SearchQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &query); err != nil {
		logging.FromContext(c.Request().Context()).WithError(err).Info("Failed to bind search query")
		return c.JSON(http.StatusBadRequest, models.Invalid([]string{errInvalidQuery}))
	}

	status, envelope := h.service.Search(c.Request().Context(), query)
	return c.JSON(status, envelope)
}
