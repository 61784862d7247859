package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ekaraca/restaurant_pos/internal/events"
	"github.com/ekaraca/restaurant_pos/internal/jwtmiddleware"
	"github.com/ekaraca/restaurant_pos/internal/orders"
	"github.com/ekaraca/restaurant_pos/internal/repo"
)

type OrderHandler struct {
	Orders   *orders.Service
	Producer *events.Producer
}

func (h *OrderHandler) Create(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var input orders.CreateOrderInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Orders.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, events.TopicOrderEvents, order.ID, map[string]interface{}{
		"type":         "order_created",
		"tenant_id":    tenantID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"final_amount": order.FinalAmount,
	})

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var filter repo.OrderFilter
	if statuses := c.QueryParam("status"); statuses != "" {
		filter.Statuses = strings.Split(statuses, ",")
	}
	if tableID := c.QueryParam("table_id"); tableID != "" {
		filter.TableID = &tableID
	}
	if from := c.QueryParam("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		filter.From = &t
	}
	if to := c.QueryParam("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		filter.To = &t
	}

	list, err := h.Orders.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) Get(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	order, err := h.Orders.Get(c.Request().Context(), tenantID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		return httpError(err)
	}

	order, err := h.Orders.UpdateStatus(c.Request().Context(), tenantID, c.Param("id"), status)
	if err != nil {
		return httpError(err)
	}

	h.publishStatus(c, tenantID, order.ID, order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Approve(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	order, err := h.Orders.Approve(c.Request().Context(), tenantID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	h.publishStatus(c, tenantID, order.ID, order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	order, err := h.Orders.Cancel(c.Request().Context(), tenantID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	h.publishStatus(c, tenantID, order.ID, order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateDiscount(c echo.Context) error {
	tenantID, err := jwtmiddleware.TenantID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req struct {
		Discount decimal.Decimal `json:"discount"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	order, err := h.Orders.UpdateDiscount(c.Request().Context(), tenantID, c.Param("id"), req.Discount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) publishStatus(c echo.Context, tenantID, orderID, status string) {
	publish(c, h.Producer, events.TopicOrderEvents, orderID, map[string]interface{}{
		"type":      "order_status_changed",
		"tenant_id": tenantID,
		"order_id":  orderID,
		"status":    status,
	})
}
