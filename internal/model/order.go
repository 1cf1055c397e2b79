package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents a persisted customer order. Line items and prices are
// frozen at creation; only the payment and delivery flags transition
// afterwards.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user" db:"user_id"`
	IdempotencyKey  uuid.UUID       `json:"-" db:"idempotency_key"`
	Items           []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice" db:"items_price"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice" db:"shipping_price"`
	TaxPrice        decimal.Decimal `json:"taxPrice" db:"tax_price"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	IsPaid          bool            `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	IsDelivered     bool            `json:"isDelivered" db:"is_delivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem is a frozen snapshot of a cart item at order-creation time.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID string          `json:"product" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Image     string          `json:"image" db:"image"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"qty" db:"quantity"`
}

// PaymentResult captures the provider confirmation posted against an order.
type PaymentResult struct {
	ProviderID string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	PayerEmail string `json:"payer_email"`
}

// OrderRequest represents the request payload for creating an order.
// Prices are client-advisory; the server recomputes them from current
// catalogue prices before persisting.
type OrderRequest struct {
	IdempotencyKey  string          `json:"idempotencyKey"`
	Items           []CartItem      `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice"`
	TaxPrice        decimal.Decimal `json:"taxPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
}

// PaymentResultRequest represents the PUT /api/orders/{id}/pay payload.
type PaymentResultRequest struct {
	ProviderID string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"update_time"`
	Payer      struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
}
