package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalogue.
type Product struct {
	ID           string          `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Image        string          `json:"image" db:"image"`
	Brand        string          `json:"brand" db:"brand"`
	Category     string          `json:"category" db:"category"`
	Description  string          `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	CountInStock int             `json:"countInStock" db:"count_in_stock"`
	Rating       decimal.Decimal `json:"rating" db:"rating"`
	NumReviews   int             `json:"numReviews" db:"num_reviews"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}

// Review represents a customer review of a product.
type Review struct {
	ID        uuid.UUID `json:"-" db:"id"`
	ProductID string    `json:"-" db:"product_id"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	UserName  string    `json:"name" db:"user_name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ReviewRequest represents the request payload for submitting a review.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ProductPage represents one page of search results.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int       `json:"pages"`
}
