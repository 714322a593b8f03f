package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	principals map[string]*model.Principal
}

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.Principal, error) {
	if p, ok := s.principals[token]; ok {
		return p, nil
	}
	return nil, apperrors.Unauthorized("not authenticated")
}

func newAuthRouter(roles ...model.Role) (*gin.Engine, map[string]*model.Principal) {
	orgID := uuid.New()
	principals := map[string]*model.Principal{
		"admin-token":   {UserID: uuid.New(), Role: model.RoleSuperAdmin},
		"patient-token": {UserID: uuid.New(), Role: model.RolePatient, OrganizationID: &orgID},
	}

	auth := NewAuthMiddleware(stubAuth{principals: principals}, "aesthiq_session")
	r := gin.New()
	r.Use(auth.Authenticate())
	r.GET("/gated", RequireRole(roles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.GetPrincipal(c).Role))
	})
	r.GET("/open", func(c *gin.Context) {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.GetPrincipal(c) != nil))
	})
	return r, principals
}

func TestRequireRole(t *testing.T) {
	r, _ := newAuthRouter(model.RoleSuperAdmin)

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
	}{
		{"anonymous", func(*http.Request) {}, http.StatusUnauthorized},
		{"invalid token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"wrong role", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "aesthiq_session", Value: "patient-token"})
		}, http.StatusForbidden},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "aesthiq_session", Value: "admin-token"})
		}, http.StatusOK},
		{"bearer fallback", func(req *http.Request) { req.Header.Set("Authorization", "Bearer admin-token") }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/gated", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthenticateLetsAnonymousThrough(t *testing.T) {
	r, _ := newAuthRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":false}`, w.Body.String())
}

type stubSetup struct {
	state *model.PaymentSetupState
}

func (s stubSetup) SetupState(context.Context, *model.Principal) (*model.PaymentSetupState, error) {
	return s.state, nil
}

func gatedRequest(t *testing.T, state *model.PaymentSetupState, role model.Role) *httptest.ResponseRecorder {
	t.Helper()
	orgID := uuid.New()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		handler.SetPrincipal(c, &model.Principal{UserID: uuid.New(), Role: role, OrganizationID: &orgID})
	})
	r.GET("/api/services", PaymentRequired(stubSetup{state: state}, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/services", nil))
	return w
}

func TestPaymentRequired(t *testing.T) {
	required := &model.PaymentSetupState{Required: true, Reason: "connect a Stripe account", SetupPath: "/settings/payments"}

	w := gatedRequest(t, required, model.RoleClinicAdmin)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"connect a Stripe account","setupPath":"/settings/payments"}`, w.Body.String())

	w = gatedRequest(t, required, model.RolePatient)
	assert.Equal(t, http.StatusOK, w.Code)

	w = gatedRequest(t, &model.PaymentSetupState{SetupPath: "/settings/payments"}, model.RoleStaff)
	assert.Equal(t, http.StatusOK, w.Code)

	bypassed := *required
	bypassed.Bypassed = true
	w = gatedRequest(t, &bypassed, model.RoleClinicAdmin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig([]string{"http://localhost:5173"})))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSListedIgnoresWildcard(t *testing.T) {
	cfg := DefaultCORSConfig([]string{"*", "https://app.aesthiq.test"})

	assert.True(t, cfg.Allowed("https://evil.test"))
	assert.False(t, cfg.Listed("https://evil.test"))
	assert.True(t, cfg.Listed("https://APP.aesthiq.test"))
	assert.False(t, cfg.Listed(""))
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewReader([]byte("ok"))))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(logger))
	r.GET("/api/auth/me", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })
	r.GET("/api/other", func(c *gin.Context) { c.Status(http.StatusUnauthorized) })

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set(HeaderXRequestID, "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderXRequestID))
	assert.Empty(t, buf.String(), "401 on /api/auth/me is logged at debug")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/other", nil))
	require.NotEmpty(t, w.Header().Get(HeaderXRequestID))
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
