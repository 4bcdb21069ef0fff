package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adepa-commerce/storefront-backend/api/routes"
	authsvc "github.com/adepa-commerce/storefront-backend/internal/auth"
	"github.com/adepa-commerce/storefront-backend/internal/cart"
	checkoutsvc "github.com/adepa-commerce/storefront-backend/internal/checkout"
	"github.com/adepa-commerce/storefront-backend/internal/orders"
	"github.com/adepa-commerce/storefront-backend/internal/payments"
	"github.com/adepa-commerce/storefront-backend/internal/products"
	"github.com/adepa-commerce/storefront-backend/internal/session"
	"github.com/adepa-commerce/storefront-backend/internal/users"
	"github.com/adepa-commerce/storefront-backend/internal/wishlist"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/metrics"
	"github.com/adepa-commerce/storefront-backend/pkg/migrate"
	"github.com/adepa-commerce/storefront-backend/pkg/paystack"
	"github.com/adepa-commerce/storefront-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paystackClient, err := paystack.NewClient(context.Background(), cfg.Paystack, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap paystack client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	sessionStore, err := session.NewRedisStore(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(userRepo, sessionStore, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(sessionStore, productService, cfg.Pricing, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, cartService, productService, cfg.Pricing, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(orderService, paystackClient, paymentMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlistRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Auth:     authService,
		Products: productService,
		Cart:     cartService,
		Checkout: checkoutService,
		Orders:   orderService,
		Payments: paymentService,
		Wishlist: wishlistService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
