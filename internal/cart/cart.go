// Package cart implements the client-resident shopping cart: line items,
// shipping address, and payment method, persisted through a pluggable
// storage port so a restart reconstructs identical state. The cart is
// advisory; the order service is the authority once a checkout submits.
package cart

import (
	"context"

	"storefront/internal/model"
)

// Durable storage keys. One slice of cart state per key.
const (
	KeyCartItems       = "cartItems"
	KeyShippingAddress = "shippingAddress"
	KeyPaymentMethod   = "paymentMethod"
)

// Persistence is the durable local storage port. Load returns nil with no
// error when the key has never been written.
type Persistence interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Catalog is the read-side product lookup used to hydrate line-item
// snapshots on add.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
}
