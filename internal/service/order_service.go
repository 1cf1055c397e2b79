package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// priceTolerance bounds the accepted drift between the client's advisory
// total and the authoritative recomputation.
var priceTolerance = decimal.NewFromFloat(0.01)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Create validates an order request, reprices it from the current
// catalogue, and persists the order with its line-item snapshots.
func (s *orderService) Create(ctx context.Context, identity *auth.Identity, req *model.OrderRequest) (*model.Order, error) {
	if err := validateOrderRequest(req); err != nil {
		return nil, err
	}

	idempotencyKey, err := resolveIdempotencyKey(req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	// A retried submission under the same key returns the original order.
	existing, err := s.orderRepo.GetByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("order_id", existing.ID.String()).
			Str("idempotency_key", idempotencyKey.String()).
			Msg("duplicate order submission, returning existing order")
		return existing, nil
	}

	productIDs := make([]string, len(req.Items))
	for i, item := range req.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Line items are snapshotted at current catalogue prices; the
	// client's submitted prices are advisory only.
	repriced := make([]model.CartItem, len(req.Items))
	for i, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductID).Msg("unknown product in order")
			return nil, model.ErrProductNotFound
		}
		repriced[i] = model.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Quantity:  item.Quantity,
		}
	}

	quote := pricing.Compute(repriced)
	if !req.TotalPrice.IsZero() && !quote.Matches(req.TotalPrice, priceTolerance) {
		s.logger.Warn().
			Str("submitted_total", req.TotalPrice.String()).
			Str("computed_total", quote.TotalPrice.String()).
			Msg("client total does not match catalogue prices")
		return nil, model.ErrPriceMismatch
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order := &model.Order{
		ID:              uuid.New(),
		UserID:          identity.UserID,
		IdempotencyKey:  idempotencyKey,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      quote.ItemsPrice,
		ShippingPrice:   quote.ShippingPrice,
		TaxPrice:        quote.TaxPrice,
		TotalPrice:      quote.TotalPrice,
		CreatedAt:       time.Now(),
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	items := make([]model.OrderItem, len(repriced))
	for i, item := range repriced {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", identity.UserID.String()).
		Int("item_count", len(items)).
		Str("total", order.TotalPrice.String()).
		Msg("order created")

	return order, nil
}

// GetByID retrieves an order, enforcing ownership.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID, identity *auth.Identity) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != identity.UserID && !identity.IsAdmin {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("requester_id", identity.UserID.String()).
			Msg("order access denied")
		return nil, model.ErrForbidden
	}

	return order, nil
}

// ListForUser retrieves the requester's orders, newest first.
func (s *orderService) ListForUser(ctx context.Context, identity *auth.Identity) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, identity.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if orders == nil {
		orders = []model.Order{}
	}

	return orders, nil
}

// Pay records a payment confirmation against an unpaid order.
func (s *orderService) Pay(ctx context.Context, id uuid.UUID, identity *auth.Identity, req *model.PaymentResultRequest) (*model.Order, error) {
	// Ownership check happens through GetByID.
	if _, err := s.GetByID(ctx, id, identity); err != nil {
		return nil, err
	}

	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Payment result is required")
	}

	result := &model.PaymentResult{
		ProviderID: req.ProviderID,
		Status:     req.Status,
		UpdateTime: req.UpdateTime,
		PayerEmail: req.Payer.EmailAddress,
	}

	if err := s.orderRepo.MarkPaid(ctx, id, result, time.Now()); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("payment_status", req.Status).
		Msg("order marked paid")

	return order, nil
}

// Deliver marks an order delivered.
func (s *orderService) Deliver(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if err := s.orderRepo.MarkDelivered(ctx, id, time.Now()); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order marked delivered")

	return order, nil
}

// validateOrderRequest validates the order creation payload.
func validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Order request is required")
	}

	if len(req.Items) == 0 {
		return model.ErrEmptyOrder
	}

	for _, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeValidation, "Every item needs a product id")
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}

	if !req.ShippingAddress.IsComplete() {
		return model.NewDomainError(model.ErrCodeValidation, "Shipping address is incomplete")
	}

	if !req.PaymentMethod.Valid() {
		return model.NewDomainError(model.ErrCodeValidation, "Unsupported payment method")
	}

	return nil
}

// resolveIdempotencyKey parses the client-supplied key, minting one for
// clients that do not send any (no dedup protection in that case).
func resolveIdempotencyKey(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}

	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewDomainError(model.ErrCodeValidation, "Idempotency key must be a UUID")
	}

	return key, nil
}
