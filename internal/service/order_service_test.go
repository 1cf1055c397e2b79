package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, result *model.PaymentResult, paidAt time.Time) error {
	args := m.Called(ctx, id, result, paidAt)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error {
	args := m.Called(ctx, id, deliveredAt)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func testIdentity() *auth.Identity {
	return &auth.Identity{UserID: uuid.New()}
}

func testAddress() model.ShippingAddress {
	return model.ShippingAddress{
		Address:    "1 Main St",
		City:       "Wellington",
		PostalCode: "6011",
		Country:    "NZ",
	}
}

func validOrderRequest() *model.OrderRequest {
	return &model.OrderRequest{
		IdempotencyKey: uuid.NewString(),
		Items: []model.CartItem{
			{ProductID: "P001", Quantity: 2},
			{ProductID: "P002", Quantity: 1},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   model.PaymentMethodPayPal,
	}
}

func catalogProducts() []model.Product {
	return []model.Product{
		{ID: "P001", Name: "Product 1", Price: decimal.NewFromInt(10), CountInStock: 5},
		{ID: "P002", Name: "Product 2", Price: decimal.NewFromInt(100), CountInStock: 5},
	}
}

func TestOrderService_Create_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	identity := testIdentity()

	req := validOrderRequest()

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	key := uuid.MustParse(req.IdempotencyKey)
	mockOrderRepo.On("GetByIdempotencyKey", ctx, key).Return(nil, nil)
	mockProductRepo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(catalogProducts(), nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := svc.Create(ctx, identity, req)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, identity.UserID, order.UserID)
	assert.Equal(t, key, order.IdempotencyKey)
	assert.Len(t, order.Items, 2)

	// 2x10 + 1x100 = 120 items, free shipping, 18.00 tax
	assert.True(t, decimal.NewFromInt(120).Equal(order.ItemsPrice), "items %s", order.ItemsPrice)
	assert.True(t, decimal.Zero.Equal(order.ShippingPrice), "shipping %s", order.ShippingPrice)
	assert.True(t, decimal.NewFromInt(18).Equal(order.TaxPrice), "tax %s", order.TaxPrice)
	assert.True(t, decimal.NewFromInt(138).Equal(order.TotalPrice), "total %s", order.TotalPrice)

	// Line items snapshot the catalogue price, not the client's
	assert.True(t, decimal.NewFromInt(10).Equal(order.Items[0].Price))

	mockOrderRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestOrderService_Create_ValidationErrors(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	withItems := func(items []model.CartItem) *model.OrderRequest {
		req := validOrderRequest()
		req.Items = items
		return req
	}

	tests := []struct {
		name        string
		req         *model.OrderRequest
		expectedErr error
	}{
		{
			name: "Nil request",
			req:  nil,
		},
		{
			name:        "Empty items",
			req:         withItems([]model.CartItem{}),
			expectedErr: model.ErrEmptyOrder,
		},
		{
			name: "Empty product ID",
			req:  withItems([]model.CartItem{{ProductID: "", Quantity: 1}}),
		},
		{
			name:        "Zero quantity",
			req:         withItems([]model.CartItem{{ProductID: "P001", Quantity: 0}}),
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name:        "Negative quantity",
			req:         withItems([]model.CartItem{{ProductID: "P001", Quantity: -5}}),
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name: "Incomplete shipping address",
			req: func() *model.OrderRequest {
				req := validOrderRequest()
				req.ShippingAddress.City = ""
				return req
			}(),
		},
		{
			name: "Unsupported payment method",
			req: func() *model.OrderRequest {
				req := validOrderRequest()
				req.PaymentMethod = "Cheque"
				return req
			}(),
		},
		{
			name: "Malformed idempotency key",
			req: func() *model.OrderRequest {
				req := validOrderRequest()
				req.IdempotencyKey = "not-a-uuid"
				return req
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrderRepo := new(MockOrderRepository)
			mockProductRepo := new(MockProductRepository)

			svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

			order, err := svc.Create(ctx, testIdentity(), tt.req)

			require.Error(t, err)
			assert.Nil(t, order)
			if tt.expectedErr != nil {
				assert.Equal(t, tt.expectedErr, err)
			}

			mockOrderRepo.AssertNotCalled(t, "BeginTx")
		})
	}
}

func TestOrderService_Create_IdempotentRetry(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := validOrderRequest()
	key := uuid.MustParse(req.IdempotencyKey)

	existing := &model.Order{ID: uuid.New(), IdempotencyKey: key}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("GetByIdempotencyKey", ctx, key).Return(existing, nil)

	order, err := svc.Create(ctx, testIdentity(), req)

	require.NoError(t, err)
	assert.Equal(t, existing.ID, order.ID)

	// No second insert
	mockOrderRepo.AssertNotCalled(t, "BeginTx")
	mockProductRepo.AssertNotCalled(t, "GetByIDs")
}

func TestOrderService_Create_ProductNotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := validOrderRequest()
	req.Items = []model.CartItem{{ProductID: "P999", Quantity: 1}}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("GetByIdempotencyKey", ctx, mock.Anything).Return(nil, nil)
	mockProductRepo.On("GetByIDs", ctx, []string{"P999"}).Return([]model.Product{}, nil)

	order, err := svc.Create(ctx, testIdentity(), req)

	require.Error(t, err)
	assert.Equal(t, model.ErrProductNotFound, err)
	assert.Nil(t, order)

	mockOrderRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_Create_PriceMismatch(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := validOrderRequest()
	// Authoritative total is 138.00; the client claims far less.
	req.TotalPrice = decimal.NewFromInt(5)

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("GetByIdempotencyKey", ctx, mock.Anything).Return(nil, nil)
	mockProductRepo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(catalogProducts(), nil)

	order, err := svc.Create(ctx, testIdentity(), req)

	require.Error(t, err)
	assert.Equal(t, model.ErrPriceMismatch, err)
	assert.Nil(t, order)

	mockOrderRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_Create_MatchingAdvisoryTotalAccepted(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := validOrderRequest()
	req.TotalPrice = decimal.NewFromInt(138)

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("GetByIdempotencyKey", ctx, mock.Anything).Return(nil, nil)
	mockProductRepo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(catalogProducts(), nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := svc.Create(ctx, testIdentity(), req)

	require.NoError(t, err)
	require.NotNil(t, order)
}

func TestOrderService_Create_TransactionRollback(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	req := validOrderRequest()

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("GetByIdempotencyKey", ctx, mock.Anything).Return(nil, nil)
	mockProductRepo.On("GetByIDs", ctx, []string{"P001", "P002"}).Return(catalogProducts(), nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).
		Return(errors.New("database error"))
	mockTx.On("Rollback", ctx).Return(nil)

	order, err := svc.Create(ctx, testIdentity(), req)

	require.Error(t, err)
	assert.Nil(t, order)

	mockOrderRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestOrderService_GetByID_Ownership(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	ownerID := uuid.New()
	orderID := uuid.New()
	order := &model.Order{ID: orderID, UserID: ownerID}

	tests := []struct {
		name        string
		identity    *auth.Identity
		expectedErr error
	}{
		{
			name:     "Owner can read",
			identity: &auth.Identity{UserID: ownerID},
		},
		{
			name:     "Admin can read",
			identity: &auth.Identity{UserID: uuid.New(), IsAdmin: true},
		},
		{
			name:        "Stranger is forbidden",
			identity:    &auth.Identity{UserID: uuid.New()},
			expectedErr: model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOrderRepo := new(MockOrderRepository)
			mockProductRepo := new(MockProductRepository)

			svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

			mockOrderRepo.On("GetByID", ctx, orderID).Return(order, nil)

			got, err := svc.GetByID(ctx, orderID, tt.identity)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.expectedErr, err)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, orderID, got.ID)
		})
	}
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	orderID := uuid.New()
	mockOrderRepo.On("GetByID", ctx, orderID).Return(nil, nil)

	got, err := svc.GetByID(ctx, orderID, testIdentity())

	require.Error(t, err)
	assert.Equal(t, model.ErrOrderNotFound, err)
	assert.Nil(t, got)
}

func TestOrderService_Pay(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	identity := testIdentity()
	orderID := uuid.New()
	order := &model.Order{ID: orderID, UserID: identity.UserID}

	req := &model.PaymentResultRequest{
		ProviderID: "PAYID-123",
		Status:     "COMPLETED",
		UpdateTime: "2024-06-01T10:00:00Z",
	}
	req.Payer.EmailAddress = "buyer@example.com"

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	paid := &model.Order{ID: orderID, UserID: identity.UserID, IsPaid: true}

	mockOrderRepo.On("GetByID", ctx, orderID).Return(order, nil).Once()
	mockOrderRepo.On("MarkPaid", ctx, orderID, mock.MatchedBy(func(r *model.PaymentResult) bool {
		return r.ProviderID == "PAYID-123" && r.PayerEmail == "buyer@example.com"
	}), mock.AnythingOfType("time.Time")).Return(nil)
	mockOrderRepo.On("GetByID", ctx, orderID).Return(paid, nil).Once()

	got, err := svc.Pay(ctx, orderID, identity, req)

	require.NoError(t, err)
	assert.True(t, got.IsPaid)

	mockOrderRepo.AssertExpectations(t)
}

func TestOrderService_Pay_AlreadyPaid(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	identity := testIdentity()
	orderID := uuid.New()
	order := &model.Order{ID: orderID, UserID: identity.UserID, IsPaid: true}

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("GetByID", ctx, orderID).Return(order, nil)
	mockOrderRepo.On("MarkPaid", ctx, orderID, mock.Anything, mock.AnythingOfType("time.Time")).
		Return(model.ErrAlreadyPaid)

	got, err := svc.Pay(ctx, orderID, identity, &model.PaymentResultRequest{Status: "COMPLETED"})

	require.Error(t, err)
	assert.Equal(t, model.ErrAlreadyPaid, err)
	assert.Nil(t, got)
}

func TestOrderService_Deliver_AlreadyDelivered(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("MarkDelivered", ctx, orderID, mock.AnythingOfType("time.Time")).
		Return(model.ErrAlreadyDelivered)

	got, err := svc.Deliver(ctx, orderID)

	require.Error(t, err)
	assert.Equal(t, model.ErrAlreadyDelivered, err)
	assert.Nil(t, got)
}

func TestOrderService_ListForUser(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	identity := testIdentity()

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)

	svc := NewOrderService(mockOrderRepo, mockProductRepo, logger)

	mockOrderRepo.On("ListByUser", ctx, identity.UserID).Return(nil, nil)

	orders, err := svc.ListForUser(ctx, identity)

	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
