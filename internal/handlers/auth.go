package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ekaraca/restaurant_pos/internal/hash"
	"github.com/ekaraca/restaurant_pos/internal/models"
)

// AuthHandler is the thin tenant-identity surface: it registers a restaurant
// account with its owner and issues tenant-scoped access tokens. Everything
// else trusts the tenant_id claim.
type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret []byte
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		TenantName string `json:"tenant_name"`
		Slug       string `json:"slug"`
		Username   string `json:"username"`
		Password   string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.TenantName == "" || req.Slug == "" || req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "tenant_name, slug, username and password are required")
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	tenant := models.Tenant{
		ID:   uuid.NewString(),
		Name: req.TenantName,
		Slug: req.Slug,
	}
	owner := models.User{
		ID:           uuid.NewString(),
		TenantID:     tenant.ID,
		Username:     req.Username,
		PasswordHash: passwordHash,
		Role:         "owner",
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		return tx.Create(&owner).Error
	})
	if txErr != nil {
		return echo.NewHTTPError(http.StatusConflict, txErr.Error())
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"tenant_id": tenant.ID,
		"user_id":   owner.ID,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	claims := jwt.MapClaims{
		"sub":       user.ID,
		"tenant_id": user.TenantID,
		"role":      user.Role,
		"exp":       time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"access_token": token})
}
