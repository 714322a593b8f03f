package staff

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	staffService "github.com/jwalitptl/aesthiq-api/internal/service/staff"
)

type Handler struct {
	service staffService.StaffServicer
}

func NewHandler(service staffService.StaffServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	staff := r.Group("/staff", middleware.RequireRole(model.RoleClinicAdmin))
	{
		staff.GET("", h.ListStaff)
		staff.POST("", h.CreateStaff)
	}

	r.GET("/clients", middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff), h.ListClients)
}

func (h *Handler) ListStaff(c *gin.Context) {
	users, err := h.service.ListStaff(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	user, err := h.service.CreateStaff(c.Request.Context(), handler.GetPrincipal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) ListClients(c *gin.Context) {
	users, err := h.service.ListClients(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}
