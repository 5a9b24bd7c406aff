package handler

import (
	"net/http"

	"github.com/HD3-run/Rcommitra/internal/cache"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/service"

	"github.com/gin-gonic/gin"
)

type UsersHandler struct {
	svc   service.AuthService
	cache cache.Cache
}

func NewUsersHandler(svc service.AuthService, c cache.Cache) *UsersHandler {
	return &UsersHandler{svc: svc, cache: c}
}

// List godoc
// @Summary      List staff users
// @Tags         users
// @Produce      json
// @Success      200  {array} dto.UserResponse
// @Router       /users [get]
func (h *UsersHandler) List(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	users, err := h.svc.ListUsers(c.Request.Context(), ident.MerchantID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create godoc
// @Summary      Add a staff user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateUserRequest true "New user"
// @Success      201  {object} dto.UserResponse
// @Failure      409  {object} apierror.Response
// @Router       /users [post]
func (h *UsersHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.CreateUser(c.Request.Context(), ident.MerchantID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateRole godoc
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id   path int true "User id"
// @Param        body body dto.UpdateRoleRequest true "New role"
// @Success      200  {object} dto.Message
// @Failure      404  {object} apierror.Response
// @Router       /users/{id}/role [put]
func (h *UsersHandler) UpdateRole(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.UpdateRole(c.Request.Context(), userID, ident.MerchantID, req.Role); err != nil {
		fail(c, err)
		return
	}
	// Close the stale-identity window right away instead of waiting out the TTL.
	middleware.InvalidateIdentity(h.cache, userID)
	c.JSON(http.StatusOK, dto.Message{Message: "Role updated"})
}

// Delete godoc
// @Summary      Remove a staff user
// @Description  Admin accounts cannot be removed.
// @Tags         users
// @Produce      json
// @Param        id path int true "User id"
// @Success      200  {object} dto.Message
// @Failure      404  {object} apierror.Response
// @Router       /users/{id} [delete]
func (h *UsersHandler) Delete(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.DeleteUser(c.Request.Context(), userID, ident.MerchantID, ident.UserID); err != nil {
		fail(c, err)
		return
	}
	middleware.InvalidateIdentity(h.cache, userID)
	c.JSON(http.StatusOK, dto.Message{Message: "User deleted"})
}

// Profile godoc
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Success      200  {object} dto.ProfileResponse
// @Router       /profile [get]
func (h *UsersHandler) Profile(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.GetProfile(c.Request.Context(), ident.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary      Update the current user's profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body body dto.UpdateProfileRequest true "Profile fields"
// @Success      200  {object} dto.ProfileResponse
// @Router       /profile [put]
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	resp, err := h.svc.UpdateProfile(c.Request.Context(), ident.UserID, req)
	if err != nil {
		fail(c, err)
		return
	}
	middleware.InvalidateIdentity(h.cache, ident.UserID)
	c.JSON(http.StatusOK, resp)
}

// ChangePassword godoc
// @Summary      Change the current user's password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body body dto.ChangePasswordRequest true "Current and new passwords"
// @Success      200  {object} dto.Message
// @Failure      401  {object} apierror.Response
// @Router       /profile/password [put]
func (h *UsersHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	if err := h.svc.ChangePassword(c.Request.Context(), ident.UserID, req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Message{Message: "Password changed"})
}
