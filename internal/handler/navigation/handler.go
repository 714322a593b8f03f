package navigation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/access"
	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
)

// Navigation is the client route set of the current user.
type Navigation struct {
	Home   string         `json:"home"`
	Routes []string       `json:"routes"`
	Menu   []access.Route `json:"menu"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	nav := r.Group("/navigation")
	{
		nav.GET("", middleware.RequireAuth(), h.Navigation)
		nav.GET("/resolve", h.Resolve)
	}
}

func (h *Handler) Navigation(c *gin.Context) {
	p := handler.GetPrincipal(c)

	routes := access.PermittedPaths(p.Role)
	if routes == nil {
		routes = []string{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(Navigation{
		Home:   access.Home(p.Role),
		Routes: routes,
		Menu:   access.Navigation(p.Role),
	}))
}

// Resolve decides whether the caller may open a client path; anonymous
// callers are answered too.
func (h *Handler) Resolve(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("path is required"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(access.Decide(handler.GetPrincipal(c), path)))
}
