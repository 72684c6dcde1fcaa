package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orchardworks/fruitstand-backend/api/routes"
	cartsvc "github.com/orchardworks/fruitstand-backend/internal/cart"
	"github.com/orchardworks/fruitstand-backend/internal/catalog"
	checkoutsvc "github.com/orchardworks/fruitstand-backend/internal/checkout"
	ordersvc "github.com/orchardworks/fruitstand-backend/internal/orders"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	"github.com/orchardworks/fruitstand-backend/pkg/config"
	"github.com/orchardworks/fruitstand-backend/pkg/db"
	"github.com/orchardworks/fruitstand-backend/pkg/logger"
	"github.com/orchardworks/fruitstand-backend/pkg/metrics"
	"github.com/orchardworks/fruitstand-backend/pkg/migrate"
	pkgredis "github.com/orchardworks/fruitstand-backend/pkg/redis"
)

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

	userRepo := users.NewRepository(dbClient.DB())
	userService, err := users.NewService(userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}
	if err := userService.Bootstrap(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to seed guest user", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartRepo := cartsvc.NewRepository(dbClient.DB())
	cartService, err := cartsvc.NewService(cartRepo, catalogRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	checkoutService, err := checkoutsvc.NewService(dbClient, cartRepo, catalogRepo, userService, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := ordersvc.NewService(ordersvc.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	// Redis is optional: without it the idempotency middleware is a no-op
	// and readiness reports it as skipped.
	var redisPinger pkgredis.Pinger
	var idemStore pkgredis.IdempotencyStore
	if cfg.Redis.Enabled() {
		redisClient, redisErr := pkgredis.New(context.Background(), cfg.Redis, logg)
		if redisErr != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", redisErr)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		idemStore = redisClient
	}

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisPinger,
			idemStore,
			prometheus.DefaultGatherer,
			catalogService,
			userService,
			cartService,
			checkoutService,
			ordersService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
