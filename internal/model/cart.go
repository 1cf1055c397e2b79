package model

import "github.com/shopspring/decimal"

// CartItem is a client-held snapshot of a chosen product. It is advisory
// until submitted as part of an order, at which point the server freezes
// its own copy of the line item.
type CartItem struct {
	ProductID    string          `json:"product"`
	Name         string          `json:"name"`
	Image        string          `json:"image"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	Quantity     int             `json:"qty"`
}

// ShippingAddress holds free-text delivery details.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// IsComplete reports whether every address field is filled in.
func (a ShippingAddress) IsComplete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// PaymentMethod identifies the payment provider selected at checkout.
// Selection only; confirmation is a manually-triggered demo action.
type PaymentMethod string

const (
	PaymentMethodPayPal PaymentMethod = "PayPal"
	PaymentMethodStripe PaymentMethod = "Stripe"
)

// Valid reports whether the method is one of the supported providers.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodPayPal || m == PaymentMethodStripe
}
