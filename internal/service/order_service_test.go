package service

import (
	"context"
	"regexp"
	"testing"

	"optika/internal/model"
	"optika/internal/notification"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestOrderService(
	orders *MockOrderRepository,
	products *MockProductRepository,
	users *MockUserRepository,
	notifier *MockNotifier,
) OrderService {
	return NewOrderService(orders, products, users, notifier, serviceClock(), zerolog.Nop())
}

func validOrderRequest() *model.CreateOrderRequest {
	return &model.CreateOrderRequest{
		UserID:        3,
		Phone:         "03001234567",
		Email:         "sana@example.com",
		FirstName:     "Sana",
		LastName:      "Tariq",
		PaymentMethod: "cash_on_pickup",
		Items: []model.OrderItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func orderCustomer() *model.User {
	return &model.User{ID: 3, FullName: "Sana Tariq", Email: "sana@example.com", Role: model.RoleCustomer}
}

func TestOrderService_Create(t *testing.T) {
	t.Run("reserves stock and computes the total in one transaction", func(t *testing.T) {
		orders := new(MockOrderRepository)
		products := new(MockProductRepository)
		users := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := newTestOrderService(orders, products, users, notifier)

		tx := new(MockTx)
		tx.On("Commit", mock.Anything).Return(nil)

		users.On("GetByID", mock.Anything, int64(3)).Return(orderCustomer(), nil)
		users.On("ListByRole", mock.Anything, model.RoleAdmin).Return([]model.User{
			{ID: 1, Email: "admin@optika.pk", Role: model.RoleAdmin},
		}, nil)
		orders.On("BeginTx", mock.Anything).Return(tx, nil)
		products.On("GetForUpdate", mock.Anything, tx, int64(1)).Return(&model.Product{
			ID: 1, Name: "Ray-Ban Aviator", Price: 500, Quantity: 10,
		}, nil)
		products.On("GetForUpdate", mock.Anything, tx, int64(2)).Return(&model.Product{
			ID: 2, Name: "Progressive Lenses", Price: 1500, Quantity: 4,
		}, nil)
		products.On("DecrementStock", mock.Anything, tx, int64(1), 2).Return(nil)
		products.On("DecrementStock", mock.Anything, tx, int64(2), 1).Return(nil)
		orders.On("CreateOrder", mock.Anything, tx, mock.AnythingOfType("*model.Order")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*model.Order).ID = 11
			}).
			Return(nil)
		orders.On("CreateOrderItems", mock.Anything, tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
		notifier.On("Send", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Create(context.Background(), validOrderRequest())

		require.NoError(t, err)
		assert.Equal(t, float64(2500), resp.Order.TotalAmount)
		assert.Equal(t, model.OrderNew, resp.Order.Status)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, int64(11), resp.Items[0].OrderID)
		assert.Equal(t, float64(1000), resp.Items[0].TotalAmount)
		assert.Equal(t, float64(1500), resp.Items[1].TotalAmount)
		assert.Regexp(t, regexp.MustCompile(`^NM-20250601-[0-9A-F]{8}$`), resp.Order.OrderNumber)

		tx.AssertCalled(t, "Commit", mock.Anything)
		tx.AssertNotCalled(t, "Rollback", mock.Anything)
		orders.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("notifies the customer and every admin", func(t *testing.T) {
		orders := new(MockOrderRepository)
		products := new(MockProductRepository)
		users := new(MockUserRepository)
		notifier := new(MockNotifier)
		svc := newTestOrderService(orders, products, users, notifier)

		tx := new(MockTx)
		tx.On("Commit", mock.Anything).Return(nil)

		users.On("GetByID", mock.Anything, int64(3)).Return(orderCustomer(), nil)
		users.On("ListByRole", mock.Anything, model.RoleAdmin).Return([]model.User{
			{ID: 1, Email: "admin@optika.pk"},
			{ID: 2, Email: "manager@optika.pk"},
		}, nil)
		orders.On("BeginTx", mock.Anything).Return(tx, nil)
		products.On("GetForUpdate", mock.Anything, tx, mock.Anything).Return(&model.Product{
			ID: 1, Name: "Ray-Ban Aviator", Price: 500, Quantity: 10,
		}, nil)
		products.On("DecrementStock", mock.Anything, tx, mock.Anything, mock.Anything).Return(nil)
		orders.On("CreateOrder", mock.Anything, tx, mock.Anything).Return(nil)
		orders.On("CreateOrderItems", mock.Anything, tx, mock.Anything).Return(nil)
		notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg notification.Message) bool {
			return msg.Event == notification.EventOrderPlaced &&
				len(msg.Recipients) == 1 && msg.Recipients[0] == "sana@example.com"
		})).Return(nil).Once()
		notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg notification.Message) bool {
			return msg.Event == notification.EventOrderReceived && len(msg.Recipients) == 2
		})).Return(nil).Once()

		_, err := svc.Create(context.Background(), validOrderRequest())

		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("rolls back the whole order when stock is insufficient", func(t *testing.T) {
		orders := new(MockOrderRepository)
		products := new(MockProductRepository)
		users := new(MockUserRepository)
		svc := newTestOrderService(orders, products, users, new(MockNotifier))

		tx := new(MockTx)
		tx.On("Rollback", mock.Anything).Return(nil)

		users.On("GetByID", mock.Anything, int64(3)).Return(orderCustomer(), nil)
		orders.On("BeginTx", mock.Anything).Return(tx, nil)
		products.On("GetForUpdate", mock.Anything, tx, int64(1)).Return(&model.Product{
			ID: 1, Name: "Ray-Ban Aviator", Price: 500, Quantity: 10,
		}, nil)
		products.On("DecrementStock", mock.Anything, tx, int64(1), 2).Return(nil)
		products.On("GetForUpdate", mock.Anything, tx, int64(2)).Return(&model.Product{
			ID: 2, Name: "Progressive Lenses", Price: 1500, Quantity: 0,
		}, nil)

		_, err := svc.Create(context.Background(), validOrderRequest())

		require.Error(t, err)
		assert.Equal(t, model.KindConflict, model.KindOf(err))
		assert.Contains(t, err.Error(), "Progressive Lenses")

		tx.AssertCalled(t, "Rollback", mock.Anything)
		tx.AssertNotCalled(t, "Commit", mock.Anything)
		orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rolls back when a product does not exist", func(t *testing.T) {
		orders := new(MockOrderRepository)
		products := new(MockProductRepository)
		users := new(MockUserRepository)
		svc := newTestOrderService(orders, products, users, new(MockNotifier))

		tx := new(MockTx)
		tx.On("Rollback", mock.Anything).Return(nil)

		users.On("GetByID", mock.Anything, int64(3)).Return(orderCustomer(), nil)
		orders.On("BeginTx", mock.Anything).Return(tx, nil)
		products.On("GetForUpdate", mock.Anything, tx, int64(1)).Return(nil, nil)

		_, err := svc.Create(context.Background(), validOrderRequest())

		require.Error(t, err)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
		tx.AssertCalled(t, "Rollback", mock.Anything)
		products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown user before opening a transaction", func(t *testing.T) {
		orders := new(MockOrderRepository)
		users := new(MockUserRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), users, new(MockNotifier))

		users.On("GetByID", mock.Anything, int64(3)).Return(nil, nil)

		_, err := svc.Create(context.Background(), validOrderRequest())

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrUserNotFound)
		orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("rejects an order with no items", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		req := validOrderRequest()
		req.Items = nil

		_, err := svc.Create(context.Background(), req)

		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	stored := func(status model.OrderStatus) (*model.Order, []model.OrderItem) {
		return &model.Order{
			ID:          11,
			OrderNumber: "NM-20250601-0A1B2C3D",
			Email:       "sana@example.com",
			Status:      status,
			TotalAmount: 2500,
		}, []model.OrderItem{{ProductID: 1, Quantity: 2}}
	}

	t.Run("advances the order through an allowed transition", func(t *testing.T) {
		orders := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), notifier)

		order, items := stored(model.OrderNew)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)
		orders.On("UpdateStatus", mock.Anything, int64(11), model.OrderInProgress).Return(nil)

		resp, err := svc.UpdateStatus(context.Background(), 11, model.OrderInProgress)

		require.NoError(t, err)
		assert.Equal(t, model.OrderInProgress, resp.Order.Status)
		notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("notifies the customer when the order is ready for pickup", func(t *testing.T) {
		orders := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), notifier)

		order, items := stored(model.OrderInProgress)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)
		orders.On("UpdateStatus", mock.Anything, int64(11), model.OrderReadyForPickup).Return(nil)
		notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg notification.Message) bool {
			return msg.Event == notification.EventOrderReady &&
				msg.Recipients[0] == "sana@example.com"
		})).Return(nil)

		_, err := svc.UpdateStatus(context.Background(), 11, model.OrderReadyForPickup)

		require.NoError(t, err)
		notifier.AssertExpectations(t)
	})

	t.Run("rejects repeating the current status", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		order, items := stored(model.OrderInProgress)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)

		_, err := svc.UpdateStatus(context.Background(), 11, model.OrderInProgress)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrSameStatus)
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("allows skipping intermediate statuses", func(t *testing.T) {
		orders := new(MockOrderRepository)
		notifier := new(MockNotifier)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), notifier)

		order, items := stored(model.OrderNew)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)
		orders.On("UpdateStatus", mock.Anything, int64(11), model.OrderReadyForPickup).Return(nil)
		notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg notification.Message) bool {
			return msg.Event == notification.EventOrderReady
		})).Return(nil)

		resp, err := svc.UpdateStatus(context.Background(), 11, model.OrderReadyForPickup)

		require.NoError(t, err)
		assert.Equal(t, model.OrderReadyForPickup, resp.Order.Status)
		notifier.AssertExpectations(t)
	})

	t.Run("rejects leaving a completed order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		order, items := stored(model.OrderCompleted)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)

		_, err := svc.UpdateStatus(context.Background(), 11, model.OrderInProgress)

		require.Error(t, err)
		assert.Equal(t, model.KindConflict, model.KindOf(err))
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("returns not found for a missing order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		orders.On("GetByID", mock.Anything, int64(99)).Return(nil, nil, nil)

		_, err := svc.UpdateStatus(context.Background(), 99, model.OrderInProgress)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_SetCancelled(t *testing.T) {
	stored := func(status model.OrderStatus) (*model.Order, []model.OrderItem) {
		return &model.Order{ID: 11, Status: status}, nil
	}

	t.Run("cancels a new order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		order, items := stored(model.OrderNew)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)
		orders.On("UpdateStatus", mock.Anything, int64(11), model.OrderCancelled).Return(nil)

		resp, err := svc.SetCancelled(context.Background(), 11, true)

		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, resp.Order.Status)
	})

	t.Run("cancelling an already cancelled order is a no-op", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		order, items := stored(model.OrderCancelled)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)

		resp, err := svc.SetCancelled(context.Background(), 11, true)

		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, resp.Order.Status)
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("uncancelling returns the order to new", func(t *testing.T) {
		orders := new(MockOrderRepository)
		svc := newTestOrderService(orders, new(MockProductRepository), new(MockUserRepository), new(MockNotifier))

		order, items := stored(model.OrderCancelled)
		orders.On("GetByID", mock.Anything, int64(11)).Return(order, items, nil)
		orders.On("UpdateStatus", mock.Anything, int64(11), model.OrderNew).Return(nil)

		resp, err := svc.SetCancelled(context.Background(), 11, false)

		require.NoError(t, err)
		assert.Equal(t, model.OrderNew, resp.Order.Status)
	})
}
