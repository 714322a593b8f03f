package booking

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	bookingService "github.com/jwalitptl/aesthiq-api/internal/service/booking"
)

type Handler struct {
	service bookingService.BookingServicer
	cors    middleware.CORSConfig
}

// NewHandler trusts the request Origin for links only when cors lists it.
func NewHandler(service bookingService.BookingServicer, cors middleware.CORSConfig) *Handler {
	return &Handler{service: service, cors: cors}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, paymentGate gin.HandlerFunc) {
	link := r.Group("/booking-link",
		middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff),
		paymentGate)
	{
		link.GET("", h.Link)
		link.GET("/qr.png", h.QRCode)
	}

	r.GET("/public/organizations/:slug", h.PublicOrganization)
}

func (h *Handler) origin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); h.cors.Listed(origin) {
		return origin
	}
	return ""
}

func (h *Handler) Link(c *gin.Context) {
	link, err := h.service.Link(c.Request.Context(), handler.GetPrincipal(c), h.origin(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(link))
}

func (h *Handler) QRCode(c *gin.Context) {
	size := 0
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("size must be an integer"))
			return
		}
		size = n
	}

	png, err := h.service.QRCode(c.Request.Context(), handler.GetPrincipal(c), h.origin(c), size)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) PublicOrganization(c *gin.Context) {
	org, err := h.service.PublicOrganization(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(org))
}
