package handler

import (
	"net/http"

	"github.com/Astemirdum/digital-library/library/internal/model"
	"github.com/labstack/echo/v4"
)

// ListUsers godoc
// @Summary list users, newest first
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.User
// @Router /users [get]
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.librarySvc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary get a user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} model.User
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.librarySvc.GetUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

type userResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

// UpdateUserRole godoc
// @Summary change a user's role
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "user id"
// @Param input body model.UpdateRoleRequest true "role"
// @Success 200 {object} userResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id}/role [put]
func (h *Handler) UpdateUserRole(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req model.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	user, err := h.librarySvc.UpdateUserRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, userResponse{
		Message: "User role updated successfully",
		User:    user,
	})
}

type deleteUserResponse struct {
	Message     string `json:"message"`
	DeletedUser string `json:"deleted_user"`
}

// DeleteUser godoc
// @Summary delete a user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "user id"
// @Success 200 {object} deleteUserResponse
// @Failure 400 {object} errs.ReferencedResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [delete]
func (h *Handler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.librarySvc.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, deleteUserResponse{
		Message:     "User deleted successfully",
		DeletedUser: user.Email,
	})
}

// UserStats godoc
// @Summary user counts by role
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.UserStats
// @Router /users/stats [get]
func (h *Handler) UserStats(c echo.Context) error {
	stats, err := h.librarySvc.UserStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
