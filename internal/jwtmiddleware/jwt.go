package jwtmiddleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

func JWTMiddleware(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningMethod: "HS256",
		ContextKey:    "user",
		SigningKey:    secret,
	})
}

func claims(c echo.Context) (jwt.MapClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, fmt.Errorf("missing jwt token in context")
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected jwt claims type")
	}
	return mc, nil
}

// TenantID pulls the tenant claim every staff operation is scoped by.
func TenantID(c echo.Context) (string, error) {
	mc, err := claims(c)
	if err != nil {
		return "", err
	}
	tenantID, ok := mc["tenant_id"].(string)
	if !ok || tenantID == "" {
		return "", fmt.Errorf("jwt token missing tenant_id claim")
	}
	return tenantID, nil
}

func UserID(c echo.Context) (string, error) {
	mc, err := claims(c)
	if err != nil {
		return "", err
	}
	sub, ok := mc["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("jwt token missing sub claim")
	}
	return sub, nil
}
