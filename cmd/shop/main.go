package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/babyland-store/babyland/internal/auth"
	"github.com/babyland-store/babyland/internal/cart"
	"github.com/babyland-store/babyland/internal/catalog"
	"github.com/babyland-store/babyland/internal/checkout"
	"github.com/babyland-store/babyland/internal/messaging"
	"github.com/babyland-store/babyland/internal/orders"
	"github.com/babyland-store/babyland/internal/scanner"
	"github.com/babyland-store/babyland/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		logger.Error("ADMIN_PASSWORD environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "shop", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("shop", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var producer *messaging.Producer
	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		producer = messaging.NewProducer(brokers, messaging.TopicOrderSubmitted)
		defer func() { _ = producer.Close() }()
	}

	authService, err := auth.NewService(adminPassword, auth.DefaultSessionTTL, logger)
	if err != nil {
		logger.Error("failed to initialize auth", "error", err)
		os.Exit(1)
	}
	authHandler := auth.NewHandler(authService, logger)

	productRepo := catalog.NewProductRepository(db)
	catalogHandler := catalog.NewHandler(productRepo, logger)

	cartStore := cart.NewStore(cart.NewPostgresStorage(db), logger)
	cartHandler := cart.NewHandler(cartStore, productRepo, logger)

	orderRepo := orders.NewOrderRepository(db)
	ordersHandler := orders.NewHandler(orderRepo, logger)

	var publisher checkout.EventPublisher
	if producer != nil {
		publisher = producer
	}
	checkoutService := checkout.NewService(cartStore, orderRepo, publisher, logger)
	checkoutHandler := checkout.NewHandler(checkoutService, logger)

	scanHandler := scanner.NewHandler(scanner.NewQRDecoder(), productRepo, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /products/{code}", telemetry.WithHTTPRoute(catalogHandler.HandleGetByCode))
	mux.HandleFunc("POST /scan", telemetry.WithHTTPRoute(scanHandler.HandleScan))

	mux.HandleFunc("GET /cart", telemetry.WithHTTPRoute(cartHandler.HandleGet))
	mux.HandleFunc("POST /cart/items", telemetry.WithHTTPRoute(cartHandler.HandleAddItem))
	mux.HandleFunc("PATCH /cart/items/{productId}", telemetry.WithHTTPRoute(cartHandler.HandleUpdateQuantity))
	mux.HandleFunc("DELETE /cart/items/{productId}", telemetry.WithHTTPRoute(cartHandler.HandleRemoveItem))
	mux.HandleFunc("DELETE /cart", telemetry.WithHTTPRoute(cartHandler.HandleClear))

	mux.HandleFunc("POST /checkout", telemetry.WithHTTPRoute(checkoutHandler.HandleSubmit))

	mux.HandleFunc("POST /admin/login", telemetry.WithHTTPRoute(authHandler.HandleLogin))

	admin := http.NewServeMux()
	admin.HandleFunc("DELETE /admin/session", telemetry.WithHTTPRoute(authHandler.HandleLogout))
	admin.HandleFunc("GET /admin/products", telemetry.WithHTTPRoute(catalogHandler.HandleList))
	admin.HandleFunc("POST /admin/products", telemetry.WithHTTPRoute(catalogHandler.HandleCreate))
	admin.HandleFunc("DELETE /admin/products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDelete))
	admin.HandleFunc("GET /admin/products/{id}/qr", telemetry.WithHTTPRoute(catalogHandler.HandleQRLabel))
	admin.HandleFunc("GET /admin/orders", telemetry.WithHTTPRoute(ordersHandler.HandleList))
	admin.HandleFunc("GET /admin/orders/pending", telemetry.WithHTTPRoute(ordersHandler.HandleListPending))
	admin.HandleFunc("GET /admin/orders/{id}", telemetry.WithHTTPRoute(ordersHandler.HandleGet))
	admin.HandleFunc("PATCH /admin/orders/{id}/status", telemetry.WithHTTPRoute(ordersHandler.HandleUpdateStatus))
	admin.HandleFunc("GET /admin/stats", telemetry.WithHTTPRoute(ordersHandler.HandleStats))
	mux.Handle("/admin/", authService.Middleware(admin))

	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "shop",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting shop service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
