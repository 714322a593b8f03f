package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	catalogService "github.com/jwalitptl/aesthiq-api/internal/service/catalog"
)

type Handler struct {
	service catalogService.CatalogServicer
}

func NewHandler(service catalogService.CatalogServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts services and membership tiers behind the payment gate.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, paymentGate gin.HandlerFunc) {
	tenantRoles := middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff, model.RolePatient)
	clinicAdmin := middleware.RequireRole(model.RoleClinicAdmin)

	services := r.Group("/services")
	{
		services.GET("", tenantRoles, paymentGate, h.ListServices)
		services.POST("", clinicAdmin, paymentGate, h.CreateService)
	}

	tiers := r.Group("/membership-tiers")
	{
		tiers.GET("", tenantRoles, paymentGate, h.ListMembershipTiers)
		tiers.POST("", clinicAdmin, paymentGate, h.CreateMembershipTier)
	}
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	service, err := h.service.CreateService(c.Request.Context(), handler.GetPrincipal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(service))
}

func (h *Handler) ListMembershipTiers(c *gin.Context) {
	tiers, err := h.service.ListMembershipTiers(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(tiers))
}

func (h *Handler) CreateMembershipTier(c *gin.Context) {
	var req model.CreateMembershipTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	tier, err := h.service.CreateMembershipTier(c.Request.Context(), handler.GetPrincipal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(tier))
}
