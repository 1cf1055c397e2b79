// Package catalogseed loads product seed data into the catalogue from a
// local JSON file or an S3 object.
package catalogseed

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Loader reads a product seed document from some source.
type Loader interface {
	// Load reads a JSON array of products from the given source (a file
	// path or object key, depending on the implementation).
	Load(ctx context.Context, source string) ([]model.Product, error)
}

// Seeder upserts loaded products into the catalogue.
type Seeder struct {
	loader Loader
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewSeeder creates a catalogue seeder.
func NewSeeder(loader Loader, repo repository.ProductRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		repo:   repo,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Run loads the seed document and upserts every product. Existing
// products keep their reviews and ratings; only catalogue fields are
// replaced.
func (s *Seeder) Run(ctx context.Context, source string) error {
	products, err := s.loader.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load product seed: %w", err)
	}

	for i := range products {
		p := &products[i]
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("seed product %d is missing id or name", i)
		}
		if err := s.repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}

	s.logger.Info().Int("products", len(products)).Str("source", source).Msg("catalogue seeded")

	return nil
}
