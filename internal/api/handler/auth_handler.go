package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portfolio/workitems-api/internal/api/metrics"
	"github.com/portfolio/workitems-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	metrics.AuthOutcomesTotal.WithLabelValues("register", metrics.AuthResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login authenticates by username or email and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.UsernameOrEmail, req.Password)
	metrics.AuthOutcomesTotal.WithLabelValues("login", metrics.AuthResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(result))
}
