package service

import (
	"context"
	"fmt"
	"time"

	"optika/internal/clock"
	"optika/internal/model"
	"optika/internal/notification"
	"optika/internal/repository"
	"optika/internal/schedule"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// appointmentService implements AppointmentService.
type appointmentService struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	guard        *schedule.Guard
	calendar     *schedule.Calculator
	notifier     notification.Notifier
	clock        clock.Clock
	validate     *validator.Validate
	logger       zerolog.Logger
}

// NewAppointmentService creates a new appointment service.
func NewAppointmentService(
	appointments repository.AppointmentRepository,
	users repository.UserRepository,
	guard *schedule.Guard,
	calendar *schedule.Calculator,
	notifier notification.Notifier,
	clk clock.Clock,
	logger zerolog.Logger,
) AppointmentService {
	return &appointmentService{
		appointments: appointments,
		users:        users,
		guard:        guard,
		calendar:     calendar,
		notifier:     notifier,
		clock:        clk,
		validate:     newValidator(),
		logger:       logger.With().Str("service", "appointment").Logger(),
	}
}

// AvailableSlots returns the open slots for a date.
func (s *appointmentService) AvailableSlots(ctx context.Context, date time.Time) ([]model.TimeOfDay, error) {
	return s.calendar.AvailableSlots(ctx, date)
}

// Book validates and creates a new appointment in the scheduled state.
func (s *appointmentService) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.AppointmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if !req.Type.Valid() {
		return nil, model.NewValidationError(model.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown appointment type %q", req.Type))
	}

	date, tod, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.guard.CheckBooking(ctx, req.Phone, date, tod); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		UserID:    req.UserID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Type:      req.Type,
		Date:      date,
		Time:      tod,
		Status:    model.AppointmentScheduled,
		CreatedAt: s.clock.Now(),
	}

	// A known user's profile overrides the request contact fields; an
	// unresolved id falls back to what the request supplied.
	if req.UserID != nil {
		user, err := s.users.GetByID(ctx, *req.UserID)
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", *req.UserID).Msg("failed to resolve booking user")
			return nil, fmt.Errorf("failed to resolve booking user: %w", err)
		}
		if user != nil && !user.Disabled {
			appt.FullName = user.FullName
			appt.Email = user.Email
			if user.Phone != "" {
				appt.Phone = user.Phone
			}
		}
	}

	if err := s.appointments.Create(ctx, appt); err != nil {
		if model.KindOf(err) == model.KindConflict {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create appointment")
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.dispatch(ctx, notification.EventAppointmentBooked, appt)

	s.logger.Info().
		Int64("appointment_id", appt.ID).
		Str("date", appt.Date.Format(model.DateLayout)).
		Str("time", appt.Time.String()).
		Msg("appointment booked")

	return appt.Response(), nil
}

// GetByID retrieves an appointment.
func (s *appointmentService) GetByID(ctx context.Context, id int64) (*model.AppointmentResponse, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return appt.Response(), nil
}

// statusEvents maps a reached status to the notification it triggers.
var statusEvents = map[model.AppointmentStatus]notification.Event{
	model.AppointmentConfirmed: notification.EventAppointmentConfirmed,
	model.AppointmentCancelled: notification.EventAppointmentCancelled,
	model.AppointmentCompleted: notification.EventAppointmentCompleted,
}

// UpdateStatus moves an appointment to a new status.
func (s *appointmentService) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.AppointmentResponse, error) {
	if !status.Valid() {
		return nil, model.NewValidationError(model.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown appointment status %q", status))
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appt.Status.CanTransitionTo(status) {
		return nil, model.NewInvalidTransition(string(appt.Status), string(status))
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("failed to update appointment status")
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	appt.Status = status

	if event, ok := statusEvents[status]; ok {
		s.dispatch(ctx, event, appt)
	}

	s.logger.Info().
		Int64("appointment_id", id).
		Str("status", string(status)).
		Msg("appointment status updated")

	return appt.Response(), nil
}

// UpdateDetails reschedules an appointment and updates its details.
func (s *appointmentService) UpdateDetails(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.AppointmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	if !req.Type.Valid() {
		return nil, model.NewValidationError(model.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown appointment type %q", req.Type))
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	date, tod, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	if err := s.guard.CheckReschedule(ctx, appt.Phone, date, tod, id); err != nil {
		return nil, err
	}

	appt.Date = date
	appt.Time = tod
	appt.Type = req.Type
	appt.Reason = req.Reason
	appt.Notes = req.Notes

	if err := s.appointments.Update(ctx, appt); err != nil {
		if model.KindOf(err) == model.KindConflict {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("failed to update appointment")
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	s.dispatch(ctx, notification.EventAppointmentUpdated, appt)

	s.logger.Info().
		Int64("appointment_id", id).
		Str("date", appt.Date.Format(model.DateLayout)).
		Str("time", appt.Time.String()).
		Msg("appointment rescheduled")

	return appt.Response(), nil
}

// Complete marks an appointment completed, optionally attaching notes.
func (s *appointmentService) Complete(ctx context.Context, id int64, notes string) (*model.AppointmentResponse, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appt.Status.CanTransitionTo(model.AppointmentCompleted) {
		return nil, model.NewInvalidTransition(string(appt.Status), string(model.AppointmentCompleted))
	}

	appt.Status = model.AppointmentCompleted
	if notes != "" {
		appt.Notes = notes
	}

	if err := s.appointments.Update(ctx, appt); err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("failed to complete appointment")
		return nil, fmt.Errorf("failed to complete appointment: %w", err)
	}

	s.dispatch(ctx, notification.EventAppointmentCompleted, appt)

	s.logger.Info().Int64("appointment_id", id).Msg("appointment completed")

	return appt.Response(), nil
}

// load retrieves an appointment or reports the distinct not-found outcome.
func (s *appointmentService) load(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("appointment_id", id).Msg("failed to get appointment")
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if appt == nil {
		return nil, model.ErrAppointmentNotFound
	}
	return appt, nil
}

// dispatch sends a notification best-effort. Failures are logged and do
// not fail the triggering operation.
func (s *appointmentService) dispatch(ctx context.Context, event notification.Event, appt *model.Appointment) {
	msg := notification.Message{
		Event:      event,
		Recipients: []string{appt.Email},
		Data: map[string]string{
			"fullName": appt.FullName,
			"date":     appt.Date.Format(model.DateLayout),
			"time":     appt.Time.String(),
			"type":     string(appt.Type),
			"status":   string(appt.Status),
		},
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn().Err(err).
			Str("event", string(event)).
			Int64("appointment_id", appt.ID).
			Msg("failed to dispatch notification")
	}
}

// parseSlot parses the wire date and time into their domain forms.
func parseSlot(dateStr, timeStr string) (time.Time, model.TimeOfDay, error) {
	date, err := model.ParseDate(dateStr)
	if err != nil {
		return time.Time{}, 0, model.NewValidationError(model.ErrCodeInvalidRequest, err.Error())
	}

	tod, err := model.ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, 0, model.NewValidationError(model.ErrCodeInvalidRequest, err.Error())
	}

	return date, tod, nil
}
