package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekaraca/restaurant_pos/internal/apperr"
	"github.com/ekaraca/restaurant_pos/internal/events"
)

// httpError translates the engine's error taxonomy into HTTP responses. The
// message keeps the wrapped detail so a UI can show "order is already paid"
// rather than a bare status code.
func httpError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrAmountMismatch):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// publish sends an event without failing the request: the state change is
// already durable, notification is best-effort.
func publish(c echo.Context, producer *events.Producer, topic, key string, event interface{}) {
	if producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := producer.Publish(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("publish %s event: %v", topic, err)
	}
}
