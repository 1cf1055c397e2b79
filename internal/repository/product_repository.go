package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const uniqueViolation = "23505"

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Search retrieves one page of products matching the keyword.
func (r *productRepository) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, int, error) {
	pattern := "%" + keyword + "%"

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM products
		WHERE name ILIKE $1
	`
	if err := r.pool.QueryRow(ctx, countQuery, pattern).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("keyword", keyword).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, created_at
		FROM products
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Str("keyword", keyword).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product rows")
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, created_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Image, &p.Brand, &p.Category, &p.Description,
		&p.Price, &p.CountInStock, &p.Rating, &p.NumReviews, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT id, name, image, brand, category, description, price, count_in_stock, rating, num_reviews, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product rows")
		return nil, err
	}

	return products, nil
}

// InsertReview stores a review and refreshes the product's aggregate
// rating within one transaction.
func (r *productRepository) InsertReview(ctx context.Context, review *model.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin review transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO reviews (id, product_id, user_id, user_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, insert,
		review.ID, review.ProductID, review.UserID, review.UserName,
		review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Debug().
				Str("product_id", review.ProductID).
				Str("user_id", review.UserID.String()).
				Msg("duplicate review rejected")
			return model.ErrAlreadyReviewed
		}
		r.logger.Error().Err(err).Str("product_id", review.ProductID).Msg("failed to insert review")
		return fmt.Errorf("failed to insert review: %w", err)
	}

	// Refresh aggregate from stored reviews rather than incrementally,
	// so the product row always matches the review table.
	update := `
		UPDATE products
		SET rating = sub.avg_rating, num_reviews = sub.review_count
		FROM (
			SELECT AVG(rating)::NUMERIC(3,2) AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			WHERE product_id = $1
		) sub
		WHERE id = $1
	`

	if _, err = tx.Exec(ctx, update, review.ProductID); err != nil {
		r.logger.Error().Err(err).Str("product_id", review.ProductID).Msg("failed to update product rating")
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("product_id", review.ProductID).Msg("failed to commit review")
		return fmt.Errorf("failed to commit review: %w", err)
	}

	return nil
}

// Upsert inserts a product or replaces its catalogue fields.
func (r *productRepository) Upsert(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, image, brand, category, description, price, count_in_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    image = EXCLUDED.image,
		    brand = EXCLUDED.brand,
		    category = EXCLUDED.category,
		    description = EXCLUDED.description,
		    price = EXCLUDED.price,
		    count_in_stock = EXCLUDED.count_in_stock
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Image, product.Brand, product.Category,
		product.Description, product.Price, product.CountInStock,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", product.ID).Msg("failed to upsert product")
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// scanProducts collects product rows, propagating row iteration errors.
func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Image, &p.Brand, &p.Category, &p.Description,
			&p.Price, &p.CountInStock, &p.Rating, &p.NumReviews, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
