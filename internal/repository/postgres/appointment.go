package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, organization_id, location_id, service_id, staff_id, client_id,
			start_time, end_time, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.OrganizationID,
		a.LocationID,
		a.ServiceID,
		a.StaffID,
		a.ClientID,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapError(err, "create appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter) ([]*model.AppointmentView, error) {
	conditions := []string{"a.organization_id = $1"}
	args := []interface{}{filter.OrganizationID}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.ClientID != nil {
		add("a.client_id = $%d", *filter.ClientID)
	}
	if filter.LocationID != nil {
		add("a.location_id = $%d", *filter.LocationID)
	}
	if filter.Status != "" {
		add("a.status = $%d", filter.Status)
	}
	if filter.From != nil {
		add("a.start_time >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("a.start_time < $%d", *filter.To)
	}

	query := `
		SELECT a.id, a.organization_id, a.location_id, a.service_id, a.staff_id, a.client_id,
			a.start_time, a.end_time, a.status, a.notes, a.created_at, a.updated_at,
			s.name AS service_name,
			TRIM(st.first_name || ' ' || st.last_name) AS staff_name,
			TRIM(c.first_name || ' ' || c.last_name) AS client_name
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		JOIN users st ON st.id = a.staff_id
		JOIN users c ON c.id = a.client_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY a.start_time ASC
	`

	appointments := []*model.AppointmentView{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, mapError(err, "list appointments")
	}
	return appointments, nil
}
