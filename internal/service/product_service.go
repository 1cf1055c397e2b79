package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// products per search page
const searchPageSize = 10

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// Search retrieves one page of products matching the keyword.
func (s *productService) Search(ctx context.Context, keyword string, page int) (*model.ProductPage, error) {
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * searchPageSize
	products, total, err := s.repo.Search(ctx, keyword, searchPageSize, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("keyword", keyword).Int("page", page).Msg("search failed")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	if products == nil {
		products = []model.Product{}
	}

	pages := (total + searchPageSize - 1) / searchPageSize
	if pages < 1 {
		pages = 1
	}

	return &model.ProductPage{
		Products: products,
		Page:     page,
		Pages:    pages,
	}, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// AddReview records a review against a product on behalf of the reviewer.
func (s *productService) AddReview(ctx context.Context, productID string, reviewer *model.User, req *model.ReviewRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Review payload is required")
	}

	if req.Rating < 1 || req.Rating > 5 {
		return model.NewDomainError(model.ErrCodeValidation, "Rating must be between 1 and 5")
	}

	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	review := &model.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    reviewer.ID,
		UserName:  reviewer.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now(),
	}

	if err := s.repo.InsertReview(ctx, review); err != nil {
		return err
	}

	s.logger.Info().
		Str("product_id", productID).
		Str("user_id", reviewer.ID.String()).
		Int("rating", req.Rating).
		Msg("review recorded")

	return nil
}
