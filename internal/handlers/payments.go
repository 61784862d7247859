package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ekaraca/restaurant_pos/internal/events"
	"github.com/ekaraca/restaurant_pos/internal/jwtmiddleware"
	"github.com/ekaraca/restaurant_pos/internal/payments"
)

type PaymentHandler struct {
	Payments *payments.Service
	Producer *events.Producer
}

func (h *PaymentHandler) Create(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	payment, err := h.Payments.Process(c.Request().Context(), tenantID, c.Param("id"), req.Amount, req.Method)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicPaymentEvents, payment.ID, map[string]interface{}{
		"type":       "payment_captured",
		"tenant_id":  tenantID,
		"order_id":   payment.OrderID,
		"payment_id": payment.ID,
		"amount":     payment.Amount,
		"method":     payment.Method,
	})

	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) ListByOrder(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	list, err := h.Payments.ListByOrder(c.Request().Context(), tenantID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *PaymentHandler) Refund(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	payment, err := h.Payments.Refund(c.Request().Context(), tenantID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicPaymentEvents, payment.ID, map[string]interface{}{
		"type":       "payment_refunded",
		"tenant_id":  tenantID,
		"order_id":   payment.OrderID,
		"payment_id": payment.ID,
		"amount":     payment.Amount,
	})

	return c.JSON(http.StatusOK, payment)
}
