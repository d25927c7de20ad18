package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"optika/internal/clock"
	"optika/internal/model"
	"optika/internal/notification"
	"optika/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	notifier notification.Notifier
	clock    clock.Clock
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	notifier notification.Notifier,
	clk clock.Clock,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		users:    users,
		notifier: notifier,
		clock:    clk,
		validate: newValidator(),
		logger:   logger.With().Str("service", "order").Logger(),
	}
}

// Create validates the request, reserves stock for every item inside a
// single transaction and persists the order with its computed total. Any
// item failure rolls the whole reservation back.
func (s *orderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", req.UserID).Msg("failed to resolve order user")
		return nil, fmt.Errorf("failed to resolve order user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	tx, err := s.orders.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	var (
		items []model.OrderItem
		total float64
	)
	items, total, err = s.reserveItems(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:        req.UserID,
		OrderNumber:   s.newOrderNumber(),
		TotalAmount:   total,
		Status:        model.OrderNew,
		Phone:         req.Phone,
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     s.clock.Now(),
	}

	if err = s.orders.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}

	if err = s.orders.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().Err(err).
			Int64("order_id", order.ID).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.notifyCustomer(ctx, notification.EventOrderPlaced, order)
	s.notifyAdmins(ctx, order)

	s.logger.Info().
		Int64("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Float64("total_amount", order.TotalAmount).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// reserveItems runs the per-item reservation loop inside tx, in request
// order: resolve, check stock, decrement, snapshot the price. The first
// failing item aborts the whole order.
func (s *orderService) reserveItems(ctx context.Context, tx pgx.Tx, reqItems []model.OrderItemRequest) ([]model.OrderItem, float64, error) {
	items := make([]model.OrderItem, 0, len(reqItems))
	var total float64

	for _, req := range reqItems {
		product, err := s.products.GetForUpdate(ctx, tx, req.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to resolve product %d: %w", req.ProductID, err)
		}
		if product == nil {
			return nil, 0, model.NewProductNotFound(req.ProductID)
		}

		if product.Quantity < req.Quantity {
			s.logger.Warn().
				Int64("product_id", product.ID).
				Int("requested", req.Quantity).
				Int("remaining", product.Quantity).
				Msg("insufficient inventory")
			return nil, 0, model.NewInsufficientStock(product.Name, product.Quantity)
		}

		if err := s.products.DecrementStock(ctx, tx, product.ID, req.Quantity); err != nil {
			return nil, 0, fmt.Errorf("failed to reserve stock for product %d: %w", product.ID, err)
		}

		lineTotal := product.Price * float64(req.Quantity)
		items = append(items, model.OrderItem{
			ProductID:   product.ID,
			Quantity:    req.Quantity,
			UnitPrice:   product.Price,
			TotalAmount: lineTotal,
		})
		total += lineTotal
	}

	return items, total, nil
}

// newOrderNumber generates a human-readable order number stamped with the
// business-local date: NM-YYYYMMDD-XXXXXXXX.
func (s *orderService) newOrderNumber() string {
	u := uuid.New()
	token := strings.ToUpper(hex.EncodeToString(u[:4]))
	return fmt.Sprintf("NM-%s-%s", s.clock.Now().Format("20060102"), token)
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id int64) (*model.OrderResponse, error) {
	order, items, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// UpdateStatus moves an order to a new status. Repeating the current
// status or leaving a terminal status is rejected as a conflict; any
// other move is allowed, including past intermediate statuses.
func (s *orderService) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.OrderResponse, error) {
	if !status.Valid() {
		return nil, model.NewValidationError(model.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown order status %q", status))
	}

	order, items, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		return nil, model.ErrSameStatus
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, model.NewInvalidTransition(string(order.Status), string(status))
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = status

	if status == model.OrderReadyForPickup {
		s.notifyCustomer(ctx, notification.EventOrderReady, order)
	}

	s.logger.Info().
		Int64("order_id", id).
		Str("status", string(status)).
		Msg("order status updated")

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// SetCancelled toggles an order between cancelled and new. Repeating the
// current state is a no-op. Stock reserved by the order is not returned on
// cancellation; the original system never restocks and we keep that
// behaviour rather than silently diverge.
func (s *orderService) SetCancelled(ctx context.Context, id int64, cancelled bool) (*model.OrderResponse, error) {
	order, items, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	target := model.OrderNew
	if cancelled {
		target = model.OrderCancelled
	}

	if order.Status == target {
		return &model.OrderResponse{Order: *order, Items: items}, nil
	}

	if err := s.orders.UpdateStatus(ctx, id, target); err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to toggle order cancellation")
		return nil, fmt.Errorf("failed to toggle order cancellation: %w", err)
	}
	order.Status = target

	if cancelled {
		s.logger.Warn().
			Int64("order_id", id).
			Msg("order cancelled; reserved stock is not returned")
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// load retrieves an order or reports the distinct not-found outcome.
func (s *orderService) load(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error) {
	order, items, err := s.orders.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", id).Msg("failed to get order")
		return nil, nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, nil, model.ErrOrderNotFound
	}
	return order, items, nil
}

// notifyCustomer sends a notification to the order's contact email,
// best-effort.
func (s *orderService) notifyCustomer(ctx context.Context, event notification.Event, order *model.Order) {
	s.send(ctx, notification.Message{
		Event:      event,
		Recipients: []string{order.Email},
		Data:       orderData(order),
	}, order.ID)
}

// notifyAdmins announces a new order to every admin user, best-effort.
func (s *orderService) notifyAdmins(ctx context.Context, order *model.Order) {
	admins, err := s.users.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list admin recipients")
		return
	}
	if len(admins) == 0 {
		return
	}

	recipients := make([]string, len(admins))
	for i, admin := range admins {
		recipients[i] = admin.Email
	}

	s.send(ctx, notification.Message{
		Event:      notification.EventOrderReceived,
		Recipients: recipients,
		Data:       orderData(order),
	}, order.ID)
}

func (s *orderService) send(ctx context.Context, msg notification.Message, orderID int64) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn().Err(err).
			Str("event", string(msg.Event)).
			Int64("order_id", orderID).
			Msg("failed to dispatch notification")
	}
}

func orderData(order *model.Order) map[string]string {
	return map[string]string{
		"orderNumber": order.OrderNumber,
		"totalAmount": fmt.Sprintf("%.2f", order.TotalAmount),
		"status":      string(order.Status),
		"firstName":   order.FirstName,
		"lastName":    order.LastName,
	}
}
