package model

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Allowed appointment state transitions. Completed and cancelled are terminal.
var appointmentTransitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	AppointmentScheduled: {AppointmentConfirmed: true, AppointmentCancelled: true},
	AppointmentConfirmed: {AppointmentCompleted: true, AppointmentCancelled: true},
	AppointmentCompleted: {},
	AppointmentCancelled: {},
}

// CanTransitionTo reports whether the state machine allows moving to the
// given status.
func (s AppointmentStatus) CanTransitionTo(to AppointmentStatus) bool {
	next := appointmentTransitions[s]
	return next != nil && next[to]
}

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// AppointmentType is the reason category for a visit.
type AppointmentType string

const (
	AppointmentConsultation AppointmentType = "consultation"
	AppointmentFollowUp     AppointmentType = "follow_up"
	AppointmentCheckup      AppointmentType = "checkup"
)

// Valid reports whether t is a known appointment type.
func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentConsultation, AppointmentFollowUp, AppointmentCheckup:
		return true
	}
	return false
}

// Appointment represents a booked visit. Date carries only the calendar
// date (UTC midnight); Time is the slot's time of day.
type Appointment struct {
	ID        int64             `json:"id" db:"id"`
	UserID    *int64            `json:"userId,omitempty" db:"user_id"`
	FullName  string            `json:"fullName" db:"full_name"`
	Email     string            `json:"email" db:"email"`
	Phone     string            `json:"phone" db:"phone"`
	Reason    string            `json:"reason" db:"reason"`
	Notes     string            `json:"notes,omitempty" db:"notes"`
	Type      AppointmentType   `json:"type" db:"type"`
	Date      time.Time         `json:"-" db:"appointment_date"`
	Time      TimeOfDay         `json:"time" db:"appointment_time"`
	Status    AppointmentStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
}

// BookAppointmentRequest is the payload for creating an appointment.
type BookAppointmentRequest struct {
	UserID   *int64          `json:"userId,omitempty"`
	FullName string          `json:"fullName" validate:"required"`
	Email    string          `json:"email" validate:"required,email"`
	Phone    string          `json:"phone" validate:"required"`
	Reason   string          `json:"reason" validate:"required"`
	Notes    string          `json:"notes"`
	Type     AppointmentType `json:"type" validate:"required"`
	Date     string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string          `json:"time" validate:"required,datetime=15:04"`
}

// UpdateAppointmentRequest is the payload for rescheduling or editing an
// appointment's details.
type UpdateAppointmentRequest struct {
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
	Time   string          `json:"time" validate:"required,datetime=15:04"`
	Type   AppointmentType `json:"type" validate:"required"`
	Reason string          `json:"reason" validate:"required"`
	Notes  string          `json:"notes"`
}

// UpdateAppointmentStatusRequest moves an appointment to a new status.
type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required"`
}

// CompleteAppointmentRequest closes out an appointment, optionally
// attaching completion notes.
type CompleteAppointmentRequest struct {
	Notes string `json:"notes"`
}

// AppointmentResponse is the wire shape of an appointment.
type AppointmentResponse struct {
	ID        int64             `json:"id"`
	UserID    *int64            `json:"userId,omitempty"`
	FullName  string            `json:"fullName"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Reason    string            `json:"reason"`
	Notes     string            `json:"notes,omitempty"`
	Type      AppointmentType   `json:"type"`
	Date      string            `json:"date"`
	Time      TimeOfDay         `json:"time"`
	Status    AppointmentStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Response maps an appointment to its wire shape.
func (a *Appointment) Response() *AppointmentResponse {
	return &AppointmentResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		FullName:  a.FullName,
		Email:     a.Email,
		Phone:     a.Phone,
		Reason:    a.Reason,
		Notes:     a.Notes,
		Type:      a.Type,
		Date:      a.Date.Format(DateLayout),
		Time:      a.Time,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}
