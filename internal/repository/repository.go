package repository

import (
	"context"
	"time"

	"optika/internal/model"

	"github.com/jackc/pgx/v5"
)

// AppointmentRepository defines data access for appointments.
type AppointmentRepository interface {
	// Create inserts a new appointment and fills in its generated id.
	// A slot collision surfaces as model.ErrSlotTaken.
	Create(ctx context.Context, appt *model.Appointment) error

	// GetByID retrieves an appointment, or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Appointment, error)

	// Update persists the mutable fields (date, time, type, reason,
	// notes, status). A slot collision surfaces as model.ErrSlotTaken.
	Update(ctx context.Context, appt *model.Appointment) error

	// UpdateStatus moves an appointment to a new status.
	UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus) error

	// BookedTimes returns the times already booked on a date, in
	// chronological order. Cancelled appointments do not hold a slot.
	BookedTimes(ctx context.Context, date time.Time) ([]model.TimeOfDay, error)

	// SlotTaken reports whether (date, t) is occupied by an appointment
	// other than excludeID (pass 0 to exclude nothing).
	SlotTaken(ctx context.Context, date time.Time, t model.TimeOfDay, excludeID int64) (bool, error)
}

// OrderRepository defines data access for orders.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction and
	// fills in its generated id.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order with its items; the order is nil when it
	// does not exist.
	GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error)

	// UpdateStatus moves an order to a new status.
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error
}

// ProductRepository defines data access for the product catalogue and its
// stock counts.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product, or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetForUpdate retrieves a product inside tx with its row locked, or
	// nil when it does not exist. The lock holds until the transaction ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Product, error)

	// DecrementStock reduces a product's available quantity inside tx.
	// The caller must hold the row lock and have checked the quantity.
	DecrementStock(ctx context.Context, tx pgx.Tx, id int64, quantity int) error
}

// UserRepository defines read access to the user directory.
type UserRepository interface {
	// GetByID retrieves a user, or nil when it does not exist.
	GetByID(ctx context.Context, id int64) (*model.User, error)

	// ListByRole retrieves all enabled users having the given role.
	ListByRole(ctx context.Context, role string) ([]model.User, error)
}
