package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository/memory"
	bookingService "github.com/jwalitptl/aesthiq-api/internal/service/booking"
)

const publicOrigin = "https://app.aesthiq.test"

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, allowOrigins []string) *gin.Engine {
	t.Helper()
	store := memory.NewStore()
	org := &model.Organization{Base: model.NewBase(), Name: "Glow Spa", Slug: "glow-spa"}
	require.NoError(t, store.Organizations().Create(context.Background(), org, nil))

	svc := bookingService.NewService(store.Organizations(), store.Services(), store.Locations(), publicOrigin, zerolog.Nop())
	h := NewHandler(svc, middleware.DefaultCORSConfig(allowOrigins))

	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		handler.SetPrincipal(c, &model.Principal{UserID: org.ID, Role: model.RoleClinicAdmin, OrganizationID: &org.ID})
	})
	h.RegisterRoutes(api, func(c *gin.Context) { c.Next() })
	return r
}

func linkFor(t *testing.T, r *gin.Engine, origin string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/booking-link", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data bookingService.Link `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.URL
}

func TestLinkUsesListedOrigin(t *testing.T) {
	r := newEngine(t, []string{"https://staff.aesthiq.test"})

	assert.Equal(t, "https://staff.aesthiq.test/c/glow-spa", linkFor(t, r, "https://staff.aesthiq.test"))
	assert.Equal(t, publicOrigin+"/c/glow-spa", linkFor(t, r, "https://evil.test"))
	assert.Equal(t, publicOrigin+"/c/glow-spa", linkFor(t, r, ""))
}

func TestLinkIgnoresOriginMatchedByWildcard(t *testing.T) {
	r := newEngine(t, []string{"*", "https://staff.aesthiq.test"})

	assert.Equal(t, publicOrigin+"/c/glow-spa", linkFor(t, r, "https://evil.test"))
	assert.Equal(t, "https://staff.aesthiq.test/c/glow-spa", linkFor(t, r, "https://staff.aesthiq.test"))
}
