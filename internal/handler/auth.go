package handler

import (
	"net/http"

	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/middleware"
	"github.com/HD3-run/Rcommitra/internal/service"
	"github.com/HD3-run/Rcommitra/internal/session"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc        service.AuthService
	cookieMax  int
	production bool
}

func NewAuthHandler(svc service.AuthService, cookieMaxAge int, production bool) *AuthHandler {
	return &AuthHandler{svc: svc, cookieMax: cookieMaxAge, production: production}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, sessionID, h.cookieMax, "/", "", h.production, true)
}

// Register godoc
// @Summary      Register a merchant
// @Description  Creates a merchant with its first admin user and starts a session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.RegisterRequest true "Merchant and admin details"
// @Success      201  {object} dto.AuthResponse
// @Failure      409  {object} apierror.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, sessionID, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.setSessionCookie(c, sessionID)
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials, sets the session cookie, and returns a phantom token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginRequest true "Credentials"
// @Success      200  {object} dto.AuthResponse
// @Failure      401  {object} apierror.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, sessionID, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.setSessionCookie(c, sessionID)
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary      Log out
// @Description  Destroys the session and revokes the phantom token if supplied.
// @Tags         auth
// @Produce      json
// @Success      200  {object} dto.Message
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(session.CookieName)
	phantom := c.GetHeader("X-Phantom-Token")
	if sessionID != "" {
		if err := h.svc.Logout(c.Request.Context(), sessionID, phantom); err != nil {
			fail(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.production, true)
	c.JSON(http.StatusOK, dto.Message{Message: "Logged out"})
}

// Me godoc
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object} middleware.Identity
// @Failure      401  {object} apierror.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.GetIdentity(c))
}
