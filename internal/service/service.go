package service

import (
	"context"
	"time"

	"optika/internal/model"
)

// AppointmentService defines operations on the appointment lifecycle.
type AppointmentService interface {
	// AvailableSlots returns the open slots for a date.
	AvailableSlots(ctx context.Context, date time.Time) ([]model.TimeOfDay, error)

	// Book validates and creates a new appointment in the scheduled state.
	Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.AppointmentResponse, error)

	// GetByID retrieves an appointment.
	GetByID(ctx context.Context, id int64) (*model.AppointmentResponse, error)

	// UpdateStatus moves an appointment to a new status.
	UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.AppointmentResponse, error)

	// UpdateDetails reschedules an appointment and updates its details.
	UpdateDetails(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.AppointmentResponse, error)

	// Complete marks an appointment completed, optionally attaching notes.
	Complete(ctx context.Context, id int64, notes string) (*model.AppointmentResponse, error)
}

// OrderService defines operations on the order lifecycle.
type OrderService interface {
	// Create validates the request, reserves stock for every item and
	// persists the order in the new state with its computed total.
	Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*model.OrderResponse, error)

	// UpdateStatus moves an order to a new status. A no-op transition is
	// rejected as a conflict.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.OrderResponse, error)

	// SetCancelled toggles an order between cancelled and new.
	SetCancelled(ctx context.Context, id int64, cancelled bool) (*model.OrderResponse, error)
}

// ProductService defines read operations on the product catalogue.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}
