package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/ekaraca/restaurant_pos/internal/handlers"
	"github.com/ekaraca/restaurant_pos/internal/jwtmiddleware"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	PaymentHandler *handlers.PaymentHandler
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)

	// Customer self-service: tenant in path, anonymous session header.
	carts := v1.Group("/tenants/:tenantID/cart")

	carts.GET("", d.CartHandler.GetCart)
	carts.POST("/items", d.CartHandler.AddItem)
	carts.PATCH("/items/:itemID", d.CartHandler.UpdateItem)
	carts.DELETE("/items/:itemID", d.CartHandler.RemoveItem)
	carts.DELETE("", d.CartHandler.ClearCart)
	carts.POST("/checkout", d.CartHandler.Checkout)

	// Staff surface: tenant comes from the access token.
	staff := v1.Group("", jwtmiddleware.JWTMiddleware(d.JWTSecret))

	staff.POST("/orders", d.OrderHandler.Create)
	staff.GET("/orders", d.OrderHandler.List)
	staff.GET("/orders/:id", d.OrderHandler.Get)
	staff.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
	staff.POST("/orders/:id/approve", d.OrderHandler.Approve)
	staff.POST("/orders/:id/cancel", d.OrderHandler.Cancel)
	staff.PATCH("/orders/:id/discount", d.OrderHandler.UpdateDiscount)

	staff.POST("/orders/:id/payments", d.PaymentHandler.Create)
	staff.GET("/orders/:id/payments", d.PaymentHandler.ListByOrder)
	staff.POST("/payments/:id/refund", d.PaymentHandler.Refund)
}
