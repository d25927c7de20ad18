package schedule

import (
	"context"
	"fmt"
	"time"

	"optika/internal/clock"
	"optika/internal/model"
	"optika/internal/repository"
)

// Guard validates a booking or reschedule request before it is persisted.
// It is pure validation: the write, and the unique index that backs the
// slot check authoritatively, live elsewhere.
type Guard struct {
	appointments repository.AppointmentRepository
	clock        clock.Clock
}

// NewGuard creates a booking conflict guard.
func NewGuard(appointments repository.AppointmentRepository, clk clock.Clock) *Guard {
	return &Guard{appointments: appointments, clock: clk}
}

// CheckBooking validates a new booking at (date, t) with the given contact
// phone. Rules run in order; the first failure wins.
func (g *Guard) CheckBooking(ctx context.Context, phone string, date time.Time, t model.TimeOfDay) error {
	return g.check(ctx, phone, date, t, 0)
}

// CheckReschedule validates moving appointment excludeID to (date, t). The
// appointment's own slot does not count as a conflict.
func (g *Guard) CheckReschedule(ctx context.Context, phone string, date time.Time, t model.TimeOfDay, excludeID int64) error {
	return g.check(ctx, phone, date, t, excludeID)
}

func (g *Guard) check(ctx context.Context, phone string, date time.Time, t model.TimeOfDay, excludeID int64) error {
	if !model.ValidMobile(phone) {
		return model.ErrInvalidPhone
	}

	now := g.clock.Now()
	today := model.DateOnly(now)
	date = model.DateOnly(date)

	if date.Before(today) {
		return model.ErrPastBooking
	}

	if date.Equal(today) && t < model.TimeOfDayFrom(now) {
		return model.ErrPastBooking
	}

	taken, err := g.appointments.SlotTaken(ctx, date, t, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check slot availability: %w", err)
	}
	if taken {
		return model.ErrSlotTaken
	}

	return nil
}
