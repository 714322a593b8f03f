package location

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	locationService "github.com/jwalitptl/aesthiq-api/internal/service/location"
)

type Handler struct {
	service locationService.LocationServicer
}

func NewHandler(service locationService.LocationServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	locations := r.Group("/locations")
	{
		locations.GET("", middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff), h.ListLocations)
		locations.POST("", middleware.RequireRole(model.RoleClinicAdmin), h.CreateLocation)
	}
}

func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.service.List(c.Request.Context(), handler.GetPrincipal(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(locations))
}

func (h *Handler) CreateLocation(c *gin.Context) {
	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	location, err := h.service.Create(c.Request.Context(), handler.GetPrincipal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(location))
}
