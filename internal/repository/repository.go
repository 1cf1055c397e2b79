package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// Search retrieves one page of products whose name matches the keyword
	// (all products when the keyword is empty), plus the total match count.
	Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, int, error)

	// GetByID retrieves a single product by its ID. Returns nil when the
	// product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// InsertReview stores a review and refreshes the product's rating and
	// review count in one transaction. Fails with ErrAlreadyReviewed when
	// the user has already reviewed the product.
	InsertReview(ctx context.Context, review *model.Review) error

	// Upsert inserts a product or replaces its catalogue fields. Used by
	// the seed loader.
	Upsert(ctx context.Context, product *model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the order's line items within the provided
	// transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order and its items. Returns nil when the order
	// does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByIdempotencyKey retrieves the order created under the given
	// checkout attempt key, or nil when no such order exists.
	GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// MarkPaid flips the order to paid and stores the payment result.
	// Fails with ErrAlreadyPaid when the order is already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, result *model.PaymentResult, paidAt time.Time) error

	// MarkDelivered flips the order to delivered. Fails with
	// ErrAlreadyDelivered when the flag is already set.
	MarkDelivered(ctx context.Context, id uuid.UUID, deliveredAt time.Time) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// Create inserts a new user. Fails with a validation error when the
	// email address is already registered.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail retrieves a user by email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID retrieves a user by id. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
