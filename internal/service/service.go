package service

import (
	"context"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for the product catalogue.
type ProductService interface {
	// Search retrieves one page of products matching the keyword.
	Search(ctx context.Context, keyword string, page int) (*model.ProductPage, error)

	// GetByID retrieves a single product by ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// AddReview records a review against a product on behalf of the
	// authenticated user. One review per user per product.
	AddReview(ctx context.Context, productID string, reviewer *model.User, req *model.ReviewRequest) error
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create validates an order request, recomputes authoritative totals
	// from current catalogue prices, and persists the order. A repeated
	// idempotency key returns the order already created under it.
	Create(ctx context.Context, identity *auth.Identity, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order, enforcing that the requester is the
	// owner or an admin.
	GetByID(ctx context.Context, id uuid.UUID, identity *auth.Identity) (*model.Order, error)

	// ListForUser retrieves the requester's orders, newest first.
	ListForUser(ctx context.Context, identity *auth.Identity) ([]model.Order, error)

	// Pay records a payment confirmation against an unpaid order.
	Pay(ctx context.Context, id uuid.UUID, identity *auth.Identity, req *model.PaymentResultRequest) (*model.Order, error)

	// Deliver marks an order delivered. Handler-gated to admins.
	Deliver(ctx context.Context, id uuid.UUID) (*model.Order, error)
}

// UserService defines operations for accounts and sessions.
type UserService interface {
	// Register creates an account and returns a signed session.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login verifies credentials and returns a signed session.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Profile retrieves the account behind an identity.
	Profile(ctx context.Context, id uuid.UUID) (*model.User, error)
}
