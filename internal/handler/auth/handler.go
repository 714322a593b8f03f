package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	authService "github.com/jwalitptl/aesthiq-api/internal/service/auth"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
}

type Handler struct {
	service authService.AuthServicer
	cookie  CookieConfig
	logger  zerolog.Logger
}

func NewHandler(service authService.AuthServicer, cookie CookieConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		cookie:  cookie,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}
}

// Me answers 401 for anonymous callers; clients treat that as signed out.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.setCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(session.User))
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	session, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	h.setCookie(c, session.Token, session.ExpiresAt)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(session.User))
}

// Logout always succeeds for the caller; a failed revocation is only logged.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), handler.GetPrincipal(c)); err != nil {
		h.logger.Error().Err(err).Msg("failed to revoke session")
	}

	h.clearCookie(c)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
}
