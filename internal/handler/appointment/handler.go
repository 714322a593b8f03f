package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/middleware"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	appointmentService "github.com/jwalitptl/aesthiq-api/internal/service/appointment"
	pkgvalidator "github.com/jwalitptl/aesthiq-api/pkg/validator"
)

type Handler struct {
	service appointmentService.AppointmentServicer
}

func NewHandler(service appointmentService.AppointmentServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes gates booking behind payment setup; listing stays open so a
// clinic can see its existing schedule.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, paymentGate gin.HandlerFunc) {
	appointments := r.Group("/appointments",
		middleware.RequireRole(model.RoleClinicAdmin, model.RoleStaff, model.RolePatient))
	{
		appointments.GET("", h.ListAppointments)
		appointments.POST("", paymentGate, h.CreateAppointment)
	}
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointments, err := h.service.List(c.Request.Context(), handler.GetPrincipal(c), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	appointment, err := h.service.Create(c.Request.Context(), handler.GetPrincipal(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

// parseFilter reads from, to (RFC 3339), status and locationId.
func parseFilter(c *gin.Context) (model.AppointmentFilter, error) {
	var filter model.AppointmentFilter

	if v := c.Query("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("from must be an RFC 3339 timestamp")
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("to must be an RFC 3339 timestamp")
		}
		filter.To = &to
	}
	if v := c.Query("locationId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid location ID")
		}
		filter.LocationID = &id
	}
	if v := c.Query("status"); v != "" {
		if !pkgvalidator.IsAppointmentStatus(v) {
			return filter, errors.New("invalid appointment status")
		}
		filter.Status = model.AppointmentStatus(v)
	}
	return filter, nil
}
