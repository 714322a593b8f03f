package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/model"
)

// SetupStater reports whether an organization still has to finish payment setup.
type SetupStater interface {
	SetupState(ctx context.Context, p *model.Principal) (*model.PaymentSetupState, error)
}

type paymentRequiredResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	SetupPath string `json:"setupPath"`
}

// PaymentRequired answers 402 to clinic admins and staff whose organization
// cannot take payments yet. Patients are not gated. A configured bypass lets
// the request through with a warning.
func PaymentRequired(setup SetupStater, logger zerolog.Logger) gin.HandlerFunc {
	logger = logger.With().Str("component", "payment_gate").Logger()

	return func(c *gin.Context) {
		p := handler.GetPrincipal(c)
		if p == nil || (p.Role != model.RoleClinicAdmin && p.Role != model.RoleStaff) {
			c.Next()
			return
		}

		state, err := setup.SetupState(c.Request.Context(), p)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		if !state.Required {
			c.Next()
			return
		}

		if state.Bypassed {
			logger.Warn().
				Str("path", c.Request.URL.Path).
				Str("user_id", p.UserID.String()).
				Str("status", state.StatusLabel).
				Msg("payment setup gate bypassed")
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusPaymentRequired, paymentRequiredResponse{
			Status:    "error",
			Message:   state.Reason,
			SetupPath: state.SetupPath,
		})
	}
}
