package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/model"
)

// Client is the HTTP implementation of OrderPlacer, posting order
// payloads to the storefront API with a bearer session token. It also
// serves as the cart's catalog port for product snapshot lookups.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates an order submission client for the given API base
// URL and session token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// PlaceOrder submits the order creation payload. Application errors come
// back as the server's error message so the orchestrator can surface
// them inline.
func (c *Client) PlaceOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var errResp model.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			message := errResp.Message
			if message == "" {
				message = errResp.Error
			}
			return nil, model.NewDomainError(errResp.Error, message)
		}
		return nil, fmt.Errorf("order submission failed with status %d", resp.StatusCode)
	}

	var order model.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode created order: %w", err)
	}

	return &order, nil
}

// GetProduct fetches a product snapshot. Satisfies the cart's catalog
// port so AddItem hydrates line items from live stock and pricing.
func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/products/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build product request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp model.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			message := errResp.Message
			if message == "" {
				message = errResp.Error
			}
			return nil, model.NewDomainError(errResp.Error, message)
		}
		return nil, fmt.Errorf("product lookup failed with status %d", resp.StatusCode)
	}

	var product model.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}

	return &product, nil
}

// Login exchanges credentials for a session token and stores it on the
// client for subsequent authenticated calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	body, err := json.Marshal(model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp model.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Error != "" {
			message := errResp.Message
			if message == "" {
				message = errResp.Error
			}
			return nil, model.NewDomainError(errResp.Error, message)
		}
		return nil, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var auth model.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	c.token = auth.Token

	return &auth, nil
}

// Authenticated reports whether the client holds a session token.
// Satisfies the checkout session port.
func (c *Client) Authenticated() bool {
	return c.token != ""
}
