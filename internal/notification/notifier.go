// Package notification dispatches lifecycle event messages. Dispatch is
// best-effort: callers log failures and never fail the triggering
// operation because of one.
package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// Event names a lifecycle trigger.
type Event string

const (
	EventAppointmentBooked    Event = "appointment.booked"
	EventAppointmentConfirmed Event = "appointment.confirmed"
	EventAppointmentCancelled Event = "appointment.cancelled"
	EventAppointmentCompleted Event = "appointment.completed"
	EventAppointmentUpdated   Event = "appointment.updated"
	EventOrderPlaced          Event = "order.placed"
	EventOrderReceived        Event = "order.received"
	EventOrderReady           Event = "order.ready_for_pickup"
)

// Message is a templated notification for one or more recipients.
type Message struct {
	Event      Event             `json:"event"`
	Recipients []string          `json:"recipients"`
	Data       map[string]string `json:"data,omitempty"`
}

// Notifier dispatches notification messages.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// logNotifier writes notifications to the log instead of delivering them.
// It stands in when no broker is configured.
type logNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) Notifier {
	return &logNotifier{logger: logger.With().Str("notifier", "log").Logger()}
}

func (n *logNotifier) Send(_ context.Context, msg Message) error {
	n.logger.Info().
		Str("event", string(msg.Event)).
		Strs("recipients", msg.Recipients).
		Interface("data", msg.Data).
		Msg("notification dispatched")
	return nil
}

func (n *logNotifier) Close() error {
	return nil
}
