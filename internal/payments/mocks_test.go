package payments

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pokedeck/storefront/internal/platform/database"
)

// fakeTx registra commit e rollback
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit() error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

// MockRepository para testes que não precisam de banco real
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) BeginTx(ctx context.Context) (database.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(database.Tx)
	return tx, args.Error(1)
}

func (m *MockRepository) GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error) {
	args := m.Called(ctx, ids)
	products, _ := args.Get(0).(map[int64]Product)
	return products, args.Error(1)
}

func (m *MockRepository) GetProductsForUpdate(ctx context.Context, tx database.Tx, ids []int64) (map[int64]Product, error) {
	args := m.Called(ctx, tx, ids)
	products, _ := args.Get(0).(map[int64]Product)
	return products, args.Error(1)
}

func (m *MockRepository) GetOrderByPayPalID(ctx context.Context, tx database.Tx, paypalOrderID string) (*Order, error) {
	args := m.Called(ctx, tx, paypalOrderID)
	order, _ := args.Get(0).(*Order)
	return order, args.Error(1)
}

func (m *MockRepository) CreateOrder(ctx context.Context, tx database.Tx, order *Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockRepository) CreateOrderItems(ctx context.Context, tx database.Tx, orderID int64, items []OrderItem) error {
	args := m.Called(ctx, tx, orderID, items)
	return args.Error(0)
}

func (m *MockRepository) DecreaseStock(ctx context.Context, tx database.Tx, productID int64, quantity int) error {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Error(0)
}

func (m *MockRepository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*Order)
	return order, args.Error(1)
}

// MockGateway substitui o PayPal nos testes
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, req CheckoutRequest) (*GatewayOrder, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*GatewayOrder)
	return order, args.Error(1)
}

func (m *MockGateway) CaptureOrder(ctx context.Context, paypalOrderID string) (*GatewayCapture, error) {
	args := m.Called(ctx, paypalOrderID)
	capture, _ := args.Get(0).(*GatewayCapture)
	return capture, args.Error(1)
}
