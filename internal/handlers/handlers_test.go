package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Tenant{}, &models.User{}, &models.Product{}, &models.Modifier{},
		&models.DiningTable{}, &models.StockMovement{}, &models.Order{},
		&models.OrderItem{}, &models.OrderItemModifier{}, &models.Payment{},
	))
	return db
}

// newContext builds an echo context around a JSON request. Path params and
// auth claims are attached by the callers that need them.
func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asStaff attaches the decoded token the JWT middleware would have set.
func asStaff(c echo.Context, tenantID string) {
	c.Set("user", &jwt.Token{Claims: jwt.MapClaims{
		"sub":       "user-1",
		"tenant_id": tenantID,
		"role":      "staff",
	}})
}

func requireHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, want, he.Code, "message: %v", he.Message)
}
