package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Store holds the pre-checkout cart. All mutations persist the affected
// slice synchronously after the in-memory update.
type Store struct {
	mu      sync.Mutex
	items   []model.CartItem
	address model.ShippingAddress
	method  model.PaymentMethod

	// Per-product sequence numbers; a product fetch result is applied
	// only if no newer AddItem for the same ref was issued meanwhile.
	seq map[string]uint64

	catalog     Catalog
	persistence Persistence
	logger      zerolog.Logger
}

// NewStore creates a cart store hydrated from the persistence port.
func NewStore(ctx context.Context, catalog Catalog, persistence Persistence, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		seq:         make(map[string]uint64),
		catalog:     catalog,
		persistence: persistence,
		logger:      logger.With().Str("component", "cart").Logger(),
	}

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// AddItem fetches the current product snapshot and upserts a line item
// keyed by product ref. Re-adding replaces the stored quantity rather
// than incrementing it. The cart is left unchanged when the lookup fails
// or when a newer AddItem for the same product was issued while the
// lookup was in flight.
func (s *Store) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	s.mu.Lock()
	s.seq[productID]++
	seq := s.seq[productID]
	s.mu.Unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		s.logger.Warn().Err(err).Str("product_id", productID).Msg("product lookup failed, cart unchanged")
		return fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}
	if product.CountInStock < 1 {
		return model.NewDomainError(model.ErrCodeValidation, "Product is out of stock")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq[productID] != seq {
		s.logger.Debug().
			Str("product_id", productID).
			Uint64("seq", seq).
			Uint64("latest", s.seq[productID]).
			Msg("stale add discarded")
		return nil
	}

	if quantity > product.CountInStock {
		quantity = product.CountInStock
	}

	item := model.CartItem{
		ProductID:    product.ID,
		Name:         product.Name,
		Image:        product.Image,
		Price:        product.Price,
		CountInStock: product.CountInStock,
		Quantity:     quantity,
	}

	replaced := false
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		s.items = append(s.items, item)
	}

	return s.saveItems(ctx)
}

// RemoveItem deletes the matching line item. Removing an absent product
// ref is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.saveItems(ctx)
		}
	}

	return nil
}

// SetShippingAddress overwrites the shipping address.
func (s *Store) SetShippingAddress(ctx context.Context, address model.ShippingAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.address = address
	return s.save(ctx, KeyShippingAddress, address)
}

// SetPaymentMethod overwrites the selected payment method.
func (s *Store) SetPaymentMethod(ctx context.Context, method model.PaymentMethod) error {
	if !method.Valid() {
		return model.NewDomainError(model.ErrCodeValidation, "Unsupported payment method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.method = method
	return s.save(ctx, KeyPaymentMethod, method)
}

// Clear empties the line items. Address and payment method are retained
// until the next override.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.persistence.Delete(ctx, KeyCartItems); err != nil {
		return fmt.Errorf("failed to clear persisted cart: %w", err)
	}

	return nil
}

// Items returns a copy of the current line items.
func (s *Store) Items() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// ShippingAddress returns the stored shipping address.
func (s *Store) ShippingAddress() model.ShippingAddress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// PaymentMethod returns the selected payment method.
func (s *Store) PaymentMethod() model.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// hydrate loads all slices from the persistence port.
func (s *Store) hydrate(ctx context.Context) error {
	if err := s.load(ctx, KeyCartItems, &s.items); err != nil {
		return err
	}
	if err := s.load(ctx, KeyShippingAddress, &s.address); err != nil {
		return err
	}
	if err := s.load(ctx, KeyPaymentMethod, &s.method); err != nil {
		return err
	}

	s.logger.Debug().
		Int("items", len(s.items)).
		Str("payment_method", string(s.method)).
		Msg("cart hydrated")

	return nil
}

func (s *Store) load(ctx context.Context, key string, dest interface{}) error {
	data, err := s.persistence.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.persistence.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

// saveItems persists the line items. Callers hold the lock.
func (s *Store) saveItems(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []model.CartItem{}
	}
	return s.save(ctx, KeyCartItems, items)
}
