package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/marcovilla/storefront-client/internal/api"
	"github.com/marcovilla/storefront-client/internal/auth"
	"github.com/marcovilla/storefront-client/internal/cart"
	"github.com/marcovilla/storefront-client/internal/catalog"
	"github.com/marcovilla/storefront-client/internal/checkout"
	"github.com/marcovilla/storefront-client/internal/orders"
	"github.com/marcovilla/storefront-client/internal/session"
	"github.com/marcovilla/storefront-client/internal/storage"
	"github.com/marcovilla/storefront-client/pkg/config"
	"github.com/marcovilla/storefront-client/pkg/enums"
	pkgerrors "github.com/marcovilla/storefront-client/pkg/errors"
	"github.com/marcovilla/storefront-client/pkg/logger"
	"github.com/marcovilla/storefront-client/pkg/metrics"
	"github.com/marcovilla/storefront-client/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "", "command: login|logout|register|profile|products|product|cart|cart-add|cart-update|cart-remove|coupon|checkout|orders|order|order-status|order-approve")

	username := flag.String("username", "", "username (login)")
	password := flag.String("password", "", "password (login/register)")
	email := flag.String("email", "", "email (register)")

	id := flag.Int64("id", 0, "product or order id")
	variant := flag.Int64("variant", 0, "product variant id (cart-add; optional when the product has a single option)")
	item := flag.Int64("item", 0, "cart item id (cart-update/cart-remove)")
	qty := flag.Int("qty", 1, "quantity")

	search := flag.String("search", "", "product search term")
	category := flag.String("category", "", "category filter")
	brand := flag.String("brand", "", "brand filter")
	page := flag.Int("page", 0, "results page")

	code := flag.String("code", "", "coupon code")
	status := flag.String("status", "", "new order status (order-status)")

	shipFirst := flag.String("ship-first", "", "shipping first name")
	shipLast := flag.String("ship-last", "", "shipping last name")
	street := flag.String("street", "", "shipping street address")
	city := flag.String("city", "", "shipping city")
	zip := flag.String("zip", "", "shipping postal code")
	country := flag.String("country", "", "shipping country")

	flag.Parse()

	if *cmd == "" {
		fmt.Fprintln(os.Stderr, "missing -cmd")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	store, err := storage.Open(ctx, cfg.Storage, logg)
	requireResource(ctx, logg, "storage", err)
	defer func() { _ = store.Close() }()

	sessions, err := session.Load(ctx, store)
	requireResource(ctx, logg, "session", err)

	apiMetrics := metrics.NewAPIMetrics(prometheus.NewRegistry())
	gateway, err := api.NewClient(cfg.API, sessions, logg, api.WithMetrics(apiMetrics))
	requireResource(ctx, logg, "api client", err)

	authSvc, err := auth.NewService(gateway, sessions, logg)
	requireResource(ctx, logg, "auth service", err)
	catalogSvc, err := catalog.NewService(gateway, sessions, logg)
	requireResource(ctx, logg, "catalog service", err)
	cartSvc, err := cart.NewService(gateway, sessions, logg)
	requireResource(ctx, logg, "cart service", err)
	orderSvc, err := orders.NewService(gateway, sessions, logg)
	requireResource(ctx, logg, "orders service", err)
	checkoutSvc, err := checkout.NewOrchestrator(gateway, cartSvc, sessions, logg)
	requireResource(ctx, logg, "checkout orchestrator", err)

	switch *cmd {
	case "login":
		user, err := authSvc.Login(ctx, auth.LoginRequest{Username: *username, Password: *password})
		exitOnError(err)
		fmt.Printf("logged in as %s\n", user.Username)

	case "logout":
		exitOnError(authSvc.Logout(ctx))
		fmt.Println("logged out")

	case "register":
		user, err := authSvc.Register(ctx, auth.RegisterRequest{
			Username: *username,
			Email:    *email,
			Password: *password,
		})
		exitOnError(err)
		fmt.Printf("registered %s, you can login now\n", user.Username)

	case "profile":
		user, err := authSvc.Profile(ctx)
		exitOnError(err)
		printJSON(user)

	case "products":
		result, err := catalogSvc.ListProducts(ctx, types.ProductListParams{
			Search:   *search,
			Category: *category,
			Brand:    *brand,
			Page:     *page,
		})
		exitOnError(err)
		printJSON(result)

	case "product":
		product, err := catalogSvc.GetProduct(ctx, *id)
		exitOnError(err)
		printJSON(product)

	case "cart":
		current, err := cartSvc.Get(ctx)
		exitOnError(err)
		printJSON(current)
		quote, err := checkoutSvc.Quote(ctx)
		exitOnError(err)
		display := quote.Format()
		fmt.Printf("subtotal: %s  total: %s\n", display.Subtotal, display.Total)

	case "cart-add":
		selected, err := catalogSvc.ResolveForAdd(ctx, *id, *variant)
		exitOnError(err)
		exitOnError(cartSvc.Add(ctx, selected.ID, *qty))
		fmt.Println("added to cart")

	case "cart-update":
		exitOnError(cartSvc.UpdateQuantity(ctx, *item, *qty))
		fmt.Println("cart updated")

	case "cart-remove":
		exitOnError(cartSvc.Remove(ctx, *item))
		fmt.Println("item removed")

	case "coupon":
		coupon, err := checkoutSvc.ApplyCoupon(ctx, *code)
		exitOnError(err)
		fmt.Printf("coupon %s applied (%s %s)\n", coupon.Code, coupon.DiscountType, coupon.Value)

	case "checkout":
		if *code != "" {
			_, err := checkoutSvc.ApplyCoupon(ctx, *code)
			exitOnError(err)
		}
		result, err := checkoutSvc.Submit(ctx, checkout.ShippingForm{
			FirstName: *shipFirst,
			LastName:  *shipLast,
			Street:    *street,
			City:      *city,
			ZipCode:   *zip,
			Country:   *country,
		})
		exitOnError(err)
		fmt.Printf("order #%d placed\n", result.Order.ID)
		fmt.Printf("complete payment at: %s\n", result.RedirectURL)

	case "orders":
		history, err := orderSvc.List(ctx)
		exitOnError(err)
		printJSON(history)

	case "order":
		order, err := orderSvc.Get(ctx, *id)
		exitOnError(err)
		printJSON(order)

	case "order-status":
		order, err := orderSvc.UpdateStatus(ctx, *id, enums.OrderStatus(*status))
		exitOnError(err)
		fmt.Printf("order #%d is now %s\n", order.ID, order.OrderStatus)

	case "order-approve":
		order, err := orderSvc.Approve(ctx, *id)
		exitOnError(err)
		fmt.Printf("order #%d approved\n", order.ID)

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(2)
	}
}

// exitOnError surfaces failures as a single user-facing notification line.
func exitOnError(err error) {
	if err == nil {
		return
	}
	if typed := pkgerrors.As(err); typed != nil {
		fmt.Fprintln(os.Stderr, typed.UserMessage())
	} else {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(1)
}

func printJSON(v any) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode output:", err)
		os.Exit(1)
	}
	fmt.Println(string(raw))
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
