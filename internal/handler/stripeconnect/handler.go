package stripeconnect

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	stripeService "github.com/jwalitptl/aesthiq-api/internal/service/stripeconnect"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBytes = 256 << 10
)

type Handler struct {
	service stripeService.StripeConnectServicer
}

func NewHandler(service stripeService.StripeConnectServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, paymentGate gin.HandlerFunc) {
	connect := r.Group("/stripe-connect")
	{
		clinicAdmin := middleware.RequireRole(model.RoleClinicAdmin)
		connect.GET("/status", clinicAdmin, h.Status)
		connect.POST("/create-account", clinicAdmin, h.CreateAccount)
		connect.POST("/refresh-onboarding", clinicAdmin, h.RefreshOnboarding)
		connect.POST("/webhook", h.Webhook)
	}

	payments := r.Group("/payments")
	{
		payments.GET("/setup-required",
			middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff),
			h.SetupRequired)
		payments.POST("/intent",
			middleware.RequireRole(model.RoleStaff, model.RolePatient),
			paymentGate,
			h.CreatePaymentIntent)
	}
}

func (h *Handler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(status))
}

func (h *Handler) CreateAccount(c *gin.Context) {
	link, err := h.service.CreateAccount(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(link))
}

func (h *Handler) RefreshOnboarding(c *gin.Context) {
	link, err := h.service.RefreshOnboarding(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(link))
}

// Webhook verifies the signature over the raw body, so it must not be bound.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read request body"))
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader)); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"received": true}))
}

func (h *Handler) SetupRequired(c *gin.Context) {
	state, err := h.service.SetupState(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(state))
}

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req model.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	intent, err := h.service.CreatePaymentIntent(c.Request.Context(), handler.GetPrincipal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(intent))
}
