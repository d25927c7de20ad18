// Package schedule computes appointment slot availability and validates
// booking requests against the shop's business rules.
package schedule

import (
	"context"
	"fmt"
	"time"

	"optika/internal/config"
	"optika/internal/model"
	"optika/internal/repository"
)

// Calculator produces the open slots for a given date.
type Calculator struct {
	appointments repository.AppointmentRepository
	hours        config.BusinessConfig
}

// NewCalculator creates a slot availability calculator.
func NewCalculator(appointments repository.AppointmentRepository, hours config.BusinessConfig) *Calculator {
	return &Calculator{appointments: appointments, hours: hours}
}

// AvailableSlots returns the candidate slots for date that are not already
// booked, in chronological order. It has no side effects; the result only
// changes when bookings intervene.
func (c *Calculator) AvailableSlots(ctx context.Context, date time.Time) ([]model.TimeOfDay, error) {
	booked, err := c.appointments.BookedTimes(ctx, model.DateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load booked times: %w", err)
	}

	taken := make(map[model.TimeOfDay]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	candidates := c.hours.Slots()
	available := make([]model.TimeOfDay, 0, len(candidates))
	for _, slot := range candidates {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}

	return available, nil
}
