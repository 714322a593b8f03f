package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
	pkgvalidator "github.com/jwalitptl/aesthiq-api/pkg/validator"
)

const ContextPrincipal = "principal"

type Response struct {
	Status  string                    `json:"status"`
	Message string                    `json:"message,omitempty"`
	Data    interface{}               `json:"data,omitempty"`
	Errors  []pkgvalidator.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err with the status of its AppError kind. Anything else
// is a 500 whose detail stays in the log.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(appErr.Message))
}

// RespondBindError reports a request body that failed to decode or validate.
func RespondBindError(c *gin.Context, err error) {
	resp := NewErrorResponse("invalid request body")

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		resp.Message = "validation failed"
		resp.Errors = pkgvalidator.Describe(err)
	case errors.Is(err, io.EOF):
		resp.Message = "request body is required"
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

func SetPrincipal(c *gin.Context, p *model.Principal) {
	c.Set(ContextPrincipal, p)
}

// GetPrincipal returns the authenticated caller, or nil for anonymous requests.
func GetPrincipal(c *gin.Context) *model.Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Principal)
	return p
}
