package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

type Appointment struct {
	Base
	OrganizationID uuid.UUID         `json:"organizationId" db:"organization_id"`
	LocationID     uuid.UUID         `json:"locationId" db:"location_id"`
	ServiceID      uuid.UUID         `json:"serviceId" db:"service_id"`
	StaffID        uuid.UUID         `json:"staffId" db:"staff_id"`
	ClientID       uuid.UUID         `json:"clientId" db:"client_id"`
	StartTime      time.Time         `json:"startTime" db:"start_time"`
	EndTime        time.Time         `json:"endTime" db:"end_time"`
	Status         AppointmentStatus `json:"status" db:"status"`
	Notes          string            `json:"notes" db:"notes"`
}

// AppointmentView is an appointment joined with display names.
type AppointmentView struct {
	Appointment
	ServiceName string `json:"serviceName" db:"service_name"`
	StaffName   string `json:"staffName" db:"staff_name"`
	ClientName  string `json:"clientName" db:"client_name"`
}

type AppointmentFilter struct {
	OrganizationID uuid.UUID
	ClientID       *uuid.UUID
	LocationID     *uuid.UUID
	Status         AppointmentStatus
	From           *time.Time
	To             *time.Time
}

type CreateAppointmentRequest struct {
	LocationID uuid.UUID  `json:"locationId" binding:"required"`
	ServiceID  uuid.UUID  `json:"serviceId" binding:"required"`
	StaffID    uuid.UUID  `json:"staffId" binding:"required"`
	ClientID   *uuid.UUID `json:"clientId"`
	StartTime  time.Time  `json:"startTime" binding:"required"`
	EndTime    time.Time  `json:"endTime" binding:"required"`
	Notes      string     `json:"notes" binding:"max=2000"`
}
