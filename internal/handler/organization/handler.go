package organization

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	orgService "github.com/jwalitptl/aesthiq-api/internal/service/organization"
)

type Handler struct {
	service orgService.OrganizationServicer
}

func NewHandler(service orgService.OrganizationServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	superAdmin := middleware.RequireRole(model.RoleSuperAdmin)

	orgs := r.Group("/organizations")
	{
		orgs.GET("/my-organization",
			middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff, model.RolePatient),
			h.MyOrganization)
		orgs.GET("", superAdmin, h.ListOrganizations)
		orgs.POST("", superAdmin, h.CreateOrganization)
		orgs.PATCH("/:id/subscription", superAdmin, h.UpdateSubscription)
	}
}

func (h *Handler) MyOrganization(c *gin.Context) {
	org, err := h.service.MyOrganization(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(org))
}

func (h *Handler) ListOrganizations(c *gin.Context) {
	orgs, err := h.service.List(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(orgs))
}

func (h *Handler) CreateOrganization(c *gin.Context) {
	var req model.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	org, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(org))
}

func (h *Handler) UpdateSubscription(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid organization ID"))
		return
	}

	var req model.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	org, err := h.service.UpdateSubscription(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(org))
}
