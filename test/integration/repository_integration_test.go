package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	repo := repository.NewProductRepository(testDB.Pool, logger)

	t.Run("Search matches keyword case-insensitively", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		products, total, err := repo.Search(ctx, "widget", 10, 0)

		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, products, 1)
		assert.Equal(t, "P005", products[0].ID)
	})

	t.Run("Search with empty keyword returns everything paged", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		products, total, err := repo.Search(ctx, "", 2, 0)

		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Len(t, products, 2)
	})

	t.Run("GetByID returns nil for unknown product", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		product, err := repo.GetByID(ctx, "P999")

		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("InsertReview updates rating aggregate and rejects duplicates", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		alice := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)
		bob := SeedUser(t, testDB.Pool, "Bob", "bob@example.com", false)

		err := repo.InsertReview(ctx, &model.Review{
			ID: uuid.New(), ProductID: "P001", UserID: alice,
			UserName: "Alice", Rating: 5, CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		err = repo.InsertReview(ctx, &model.Review{
			ID: uuid.New(), ProductID: "P001", UserID: bob,
			UserName: "Bob", Rating: 2, CreatedAt: time.Now(),
		})
		require.NoError(t, err)

		product, err := repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		assert.Equal(t, 2, product.NumReviews)
		assert.True(t, decimal.NewFromFloat(3.5).Equal(product.Rating), "rating %s", product.Rating)

		// Second review from the same user
		err = repo.InsertReview(ctx, &model.Review{
			ID: uuid.New(), ProductID: "P001", UserID: alice,
			UserName: "Alice", Rating: 1, CreatedAt: time.Now(),
		})
		require.Error(t, err)
		assert.Equal(t, model.ErrAlreadyReviewed, err)

		product, err = repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		assert.Equal(t, 2, product.NumReviews)
	})

	t.Run("Upsert replaces catalogue fields and keeps ratings", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		alice := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)
		require.NoError(t, repo.InsertReview(ctx, &model.Review{
			ID: uuid.New(), ProductID: "P001", UserID: alice,
			UserName: "Alice", Rating: 4, CreatedAt: time.Now(),
		}))

		require.NoError(t, repo.Upsert(ctx, &model.Product{
			ID:           "P001",
			Name:         "Renamed Product",
			Price:        decimal.NewFromFloat(12.50),
			CountInStock: 99,
		}))

		product, err := repo.GetByID(ctx, "P001")
		require.NoError(t, err)
		assert.Equal(t, "Renamed Product", product.Name)
		assert.Equal(t, 99, product.CountInStock)
		assert.Equal(t, 1, product.NumReviews)
	})
}

func createTestOrder(t *testing.T, repo repository.OrderRepository, userID uuid.UUID, key uuid.UUID) *model.Order {
	t.Helper()

	ctx := context.Background()

	order := &model.Order{
		ID:             uuid.New(),
		UserID:         userID,
		IdempotencyKey: key,
		ShippingAddress: model.ShippingAddress{
			Address: "1 Main St", City: "Wellington", PostalCode: "6011", Country: "NZ",
		},
		PaymentMethod: model.PaymentMethodPayPal,
		ItemsPrice:    decimal.NewFromInt(40),
		ShippingPrice: decimal.NewFromInt(100),
		TaxPrice:      decimal.NewFromInt(6),
		TotalPrice:    decimal.NewFromInt(146),
		CreatedAt:     time.Now(),
	}

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, []model.OrderItem{
		{ID: uuid.New(), OrderID: order.ID, ProductID: "P001", Name: "Test Product 1", Price: decimal.NewFromInt(10), Quantity: 2},
		{ID: uuid.New(), OrderID: order.ID, ProductID: "P002", Name: "Test Product 2", Price: decimal.NewFromInt(20), Quantity: 1},
	}))
	require.NoError(t, tx.Commit(ctx))

	return order
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	repo := repository.NewOrderRepository(testDB.Pool, logger)

	t.Run("Create and load round trip", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)

		created := createTestOrder(t, repo, userID, uuid.New())

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, userID, got.UserID)
		assert.Len(t, got.Items, 2)
		assert.True(t, decimal.NewFromInt(146).Equal(got.TotalPrice), "total %s", got.TotalPrice)
		assert.False(t, got.IsPaid)
		assert.Nil(t, got.PaymentResult)
	})

	t.Run("GetByIdempotencyKey finds the original order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)

		key := uuid.New()
		created := createTestOrder(t, repo, userID, key)

		got, err := repo.GetByIdempotencyKey(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)

		missing, err := repo.GetByIdempotencyKey(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("MarkPaid stores the payment result once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)

		created := createTestOrder(t, repo, userID, uuid.New())

		result := &model.PaymentResult{
			ProviderID: "PAYID-123",
			Status:     "COMPLETED",
			UpdateTime: "2024-06-01T10:00:00Z",
			PayerEmail: "alice@example.com",
		}

		require.NoError(t, repo.MarkPaid(ctx, created.ID, result, time.Now()))

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.IsPaid)
		require.NotNil(t, got.PaidAt)
		require.NotNil(t, got.PaymentResult)
		assert.Equal(t, "PAYID-123", got.PaymentResult.ProviderID)

		// Second confirmation is rejected
		err = repo.MarkPaid(ctx, created.ID, result, time.Now())
		require.Error(t, err)
		assert.Equal(t, model.ErrAlreadyPaid, err)
	})

	t.Run("MarkPaid on unknown order is NotFound", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		err := repo.MarkPaid(ctx, uuid.New(), &model.PaymentResult{}, time.Now())
		require.Error(t, err)
		assert.Equal(t, model.ErrOrderNotFound, err)
	})

	t.Run("MarkDelivered flips the flag once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)
		userID := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)

		created := createTestOrder(t, repo, userID, uuid.New())

		require.NoError(t, repo.MarkDelivered(ctx, created.ID, time.Now()))

		err := repo.MarkDelivered(ctx, created.ID, time.Now())
		require.Error(t, err)
		assert.Equal(t, model.ErrAlreadyDelivered, err)
	})

	t.Run("ListByUser returns newest first", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)
		alice := SeedUser(t, testDB.Pool, "Alice", "alice@example.com", false)
		bob := SeedUser(t, testDB.Pool, "Bob", "bob@example.com", false)

		first := createTestOrder(t, repo, alice, uuid.New())
		second := createTestOrder(t, repo, alice, uuid.New())
		createTestOrder(t, repo, bob, uuid.New())

		orders, err := repo.ListByUser(ctx, alice)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
	})
}

func TestUserRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	ctx := context.Background()

	repo := repository.NewUserRepository(testDB.Pool, logger)

	t.Run("Create and fetch by email", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		user := &model.User{
			ID:           uuid.New(),
			Name:         "Alice",
			Email:        "alice@example.com",
			PasswordHash: "hash",
			CreatedAt:    time.Now(),
		}

		require.NoError(t, repo.Create(ctx, user))

		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)

		missing, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)

		first := &model.User{
			ID: uuid.New(), Name: "Alice", Email: "alice@example.com",
			PasswordHash: "hash", CreatedAt: time.Now(),
		}
		require.NoError(t, repo.Create(ctx, first))

		second := &model.User{
			ID: uuid.New(), Name: "Other Alice", Email: "alice@example.com",
			PasswordHash: "hash", CreatedAt: time.Now(),
		}
		err := repo.Create(ctx, second)
		require.Error(t, err)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
	})
}
