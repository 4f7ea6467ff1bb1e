package handler

import (
	"net/http"

	"github.com/Astemirdum/digital-library/library/internal/errs"
	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/Astemirdum/digital-library/pkg/auth"
	"github.com/labstack/echo/v4"
)

// Register godoc
// @Summary register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param input body model.RegisterRequest true "credentials"
// @Success 201 {object} model.AuthResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /auth/register [post]
func (h *Handler) Register(c echo.Context) error {
	var req model.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrCredentialsRequired.Error())
	}
	resp, err := h.librarySvc.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary log in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body model.LoginRequest true "credentials"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c echo.Context) error {
	var req model.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrCredentialsRequired.Error())
	}
	resp, err := h.librarySvc.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Profile godoc
// @Summary caller profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.User
// @Failure 404 {object} middleware.ErrorResponse
// @Router /auth/profile [get]
func (h *Handler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	profile, err := auth.FromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	user, err := h.librarySvc.Profile(ctx, profile.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}
