package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"optika/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// appointmentRepository implements AppointmentRepository using PostgreSQL.
type appointmentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAppointmentRepository creates a new PostgreSQL-backed appointment repository.
func NewAppointmentRepository(pool *pgxpool.Pool, logger zerolog.Logger) AppointmentRepository {
	return &appointmentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "appointment").Logger(),
	}
}

// uniqueViolation is the PostgreSQL error code for a unique constraint breach.
const uniqueViolation = "23505"

// isSlotConflict reports whether err is a violation of the appointment
// slot unique index.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new appointment. Two concurrent writes to the same slot
// both pass the advisory check, so the unique index decides the winner and
// the loser gets model.ErrSlotTaken.
func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments
			(user_id, full_name, email, phone, reason, notes, type,
			 appointment_date, appointment_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		appt.UserID, appt.FullName, appt.Email, appt.Phone,
		appt.Reason, appt.Notes, appt.Type,
		appt.Date, int(appt.Time), appt.Status, appt.CreatedAt,
	).Scan(&appt.ID)
	if err != nil {
		if isSlotConflict(err) {
			r.logger.Warn().
				Str("date", appt.Date.Format(model.DateLayout)).
				Str("time", appt.Time.String()).
				Msg("slot unique constraint violated")
			return model.ErrSlotTaken
		}
		r.logger.Error().Err(err).Msg("failed to create appointment")
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	r.logger.Debug().
		Int64("appointment_id", appt.ID).
		Msg("appointment created successfully")

	return nil
}

// GetByID retrieves an appointment by its id.
func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `
		SELECT id, user_id, full_name, email, phone, reason, notes, type,
		       appointment_date, appointment_time, status, created_at
		FROM appointments
		WHERE id = $1
	`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("appointment_id", id).Msg("appointment not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("appointment_id", id).Msg("failed to query appointment")
		return nil, fmt.Errorf("failed to query appointment: %w", err)
	}

	return appt, nil
}

// Update persists an appointment's mutable fields.
func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET appointment_date = $1, appointment_time = $2, type = $3,
		    reason = $4, notes = $5, status = $6
		WHERE id = $7
	`

	_, err := r.pool.Exec(ctx, query,
		appt.Date, int(appt.Time), appt.Type,
		appt.Reason, appt.Notes, appt.Status, appt.ID,
	)
	if err != nil {
		if isSlotConflict(err) {
			return model.ErrSlotTaken
		}
		r.logger.Error().Err(err).Int64("appointment_id", appt.ID).Msg("failed to update appointment")
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	return nil
}

// UpdateStatus moves an appointment to a new status.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE appointments SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("appointment_id", id).
			Str("status", string(status)).
			Msg("failed to update appointment status")
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	return nil
}

// BookedTimes returns the times already booked on a date.
func (r *appointmentRepository) BookedTimes(ctx context.Context, date time.Time) ([]model.TimeOfDay, error) {
	query := `
		SELECT appointment_time
		FROM appointments
		WHERE appointment_date = $1 AND status <> $2
		ORDER BY appointment_time
	`

	rows, err := r.pool.Query(ctx, query, date, model.AppointmentCancelled)
	if err != nil {
		r.logger.Error().Err(err).
			Str("date", date.Format(model.DateLayout)).
			Msg("failed to query booked times")
		return nil, fmt.Errorf("failed to query booked times: %w", err)
	}
	defer rows.Close()

	var times []model.TimeOfDay
	for rows.Next() {
		var minutes int
		if err := rows.Scan(&minutes); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan booked time row")
			return nil, fmt.Errorf("failed to scan booked time: %w", err)
		}
		times = append(times, model.TimeOfDay(minutes))
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating booked time rows")
		return nil, fmt.Errorf("error iterating booked times: %w", err)
	}

	return times, nil
}

// SlotTaken reports whether a slot is occupied, excluding excludeID.
func (r *appointmentRepository) SlotTaken(ctx context.Context, date time.Time, t model.TimeOfDay, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM appointments
			WHERE appointment_date = $1 AND appointment_time = $2
			  AND status <> $3 AND id <> $4
		)
	`

	var taken bool
	err := r.pool.QueryRow(ctx, query, date, int(t), model.AppointmentCancelled, excludeID).Scan(&taken)
	if err != nil {
		r.logger.Error().Err(err).
			Str("date", date.Format(model.DateLayout)).
			Str("time", t.String()).
			Msg("failed to check slot")
		return false, fmt.Errorf("failed to check slot: %w", err)
	}

	return taken, nil
}

// scanAppointment reads one appointment row.
func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	var minutes int

	err := row.Scan(
		&appt.ID, &appt.UserID, &appt.FullName, &appt.Email, &appt.Phone,
		&appt.Reason, &appt.Notes, &appt.Type,
		&appt.Date, &minutes, &appt.Status, &appt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Time = model.TimeOfDay(minutes)
	appt.Date = model.DateOnly(appt.Date)
	return &appt, nil
}
