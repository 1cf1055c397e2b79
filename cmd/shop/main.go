// Command shop is a small storefront client. It keeps a durable local
// cart (file or Redis backed), walks the checkout steps against a
// running API server, and prints the resulting order.
//
// Usage:
//
//	shop -api http://localhost:8080 add P001 2
//	shop remove P001
//	shop show
//	shop checkout -email user@example.com -password secret \
//	  -address "1 Main St" -city Wellington -postal 6011 -country NZ -method PayPal
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := flag.NewFlagSet("shop", flag.ContinueOnError)
	apiURL := flags.String("api", "http://localhost:8080", "storefront API base URL")
	stateDir := flags.String("state", ".shop", "directory for the durable cart (file backend)")
	redisAddr := flags.String("redis", "", "Redis address for the durable cart (empty uses the file backend)")
	redisPassword := flags.String("redis-password", "", "Redis password")
	redisDB := flags.Int("redis-db", 0, "Redis database number")
	logLevel := flags.String("log-level", "error", "log level: debug, info, warn, or error")
	email := flags.String("email", "", "account email (checkout)")
	password := flags.String("password", "", "account password (checkout)")
	address := flags.String("address", "", "shipping street address (checkout)")
	city := flags.String("city", "", "shipping city (checkout)")
	postal := flags.String("postal", "", "shipping postal code (checkout)")
	country := flags.String("country", "", "shipping country (checkout)")
	method := flags.String("method", string(model.PaymentMethodPayPal), "payment method (checkout)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() < 1 {
		flags.Usage()
		return fmt.Errorf("missing command: add | remove | show | clear | checkout")
	}

	logger := config.NewLogger(config.LoggerConfig{Level: *logLevel, Format: "console"})

	ctx := context.Background()

	persistence, err := openPersistence(ctx, *redisAddr, *redisPassword, *redisDB, *stateDir, logger)
	if err != nil {
		return err
	}

	client := checkout.NewClient(*apiURL, "")

	store, err := cart.NewStore(ctx, client, persistence, logger)
	if err != nil {
		return fmt.Errorf("failed to open cart: %w", err)
	}

	switch cmd := flags.Arg(0); cmd {
	case "add":
		if flags.NArg() < 2 {
			return fmt.Errorf("usage: shop add <product-id> [quantity]")
		}
		quantity := 1
		if flags.NArg() >= 3 {
			quantity, err = strconv.Atoi(flags.Arg(2))
			if err != nil {
				return fmt.Errorf("invalid quantity %q", flags.Arg(2))
			}
		}
		if err := store.AddItem(ctx, flags.Arg(1), quantity); err != nil {
			return err
		}
		return printCart(store)

	case "remove":
		if flags.NArg() < 2 {
			return fmt.Errorf("usage: shop remove <product-id>")
		}
		if err := store.RemoveItem(ctx, flags.Arg(1)); err != nil {
			return err
		}
		return printCart(store)

	case "show":
		return printCart(store)

	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		return printCart(store)

	case "checkout":
		return runCheckout(ctx, store, client, checkoutInput{
			email:    *email,
			password: *password,
			method:   model.PaymentMethod(*method),
			address: model.ShippingAddress{
				Address:    *address,
				City:       *city,
				PostalCode: *postal,
				Country:    *country,
			},
		}, logger)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type checkoutInput struct {
	email    string
	password string
	address  model.ShippingAddress
	method   model.PaymentMethod
}

// runCheckout signs in, then walks the checkout steps in order and
// submits the order. Fields left blank on the command line fall back to
// whatever the durable cart already holds.
func runCheckout(ctx context.Context, store *cart.Store, client *checkout.Client, in checkoutInput, logger zerolog.Logger) error {
	if in.email == "" || in.password == "" {
		return fmt.Errorf("checkout requires -email and -password")
	}
	if _, err := client.Login(ctx, in.email, in.password); err != nil {
		return err
	}

	flow := checkout.New(store, client, client, logger)

	if err := flow.Begin(); err != nil {
		var redirect *checkout.SignInRedirect
		if errors.As(err, &redirect) {
			return fmt.Errorf("sign in required, resume at %s", redirect.Resume)
		}
		return err
	}

	addr := in.address
	if !addr.IsComplete() {
		addr = store.ShippingAddress()
	}
	if err := flow.SubmitAddress(ctx, addr); err != nil {
		return err
	}

	if err := flow.SelectPayment(ctx, in.method); err != nil {
		return err
	}

	quote := flow.Quote()
	fmt.Printf("items %s  shipping %s  tax %s  total %s\n",
		quote.ItemsPrice.StringFixed(2),
		quote.ShippingPrice.StringFixed(2),
		quote.TaxPrice.StringFixed(2),
		quote.TotalPrice.StringFixed(2))

	order, err := flow.PlaceOrder(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("order placed: %s\n", order.ID)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(order)
}

// openPersistence picks the cart backend: Redis when an address is
// given, otherwise JSON files under the state directory.
func openPersistence(ctx context.Context, redisAddr, redisPassword string, redisDB int, stateDir string, logger zerolog.Logger) (cart.Persistence, error) {
	if redisAddr != "" {
		persistence, err := cart.NewRedisStore(ctx, redisAddr, redisPassword, redisDB, "local", logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis cart store: %w", err)
		}
		return persistence, nil
	}

	persistence, err := cart.NewFileStore(stateDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart state directory: %w", err)
	}
	return persistence, nil
}

func printCart(store *cart.Store) error {
	snapshot := struct {
		Items           []model.CartItem      `json:"items"`
		ShippingAddress model.ShippingAddress `json:"shippingAddress"`
		PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
	}{store.Items(), store.ShippingAddress(), store.PaymentMethod()}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}
