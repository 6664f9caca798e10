package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/aaravmahajanofficial/storefront/docs"
	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/health"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/telemetry"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/pkg/backend"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Cart, sign-in and checkout for the storefront UI. State is bound to the sf_session cookie.
//	@BasePath		/api/v1

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing
	shutdownTracer, err := telemetry.InitTracer(context.Background(), &cfg.Telemetry, cfg.Env)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	defer func() {
		if err := redisCache.Close(); err != nil {
			slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Redis connection closed")
		}
	}()

	backendClient := backend.NewClient(&cfg.Backend, backend.WithCallObserver(metrics.RecordBackendCall))

	registry, err := service.NewRegistry(service.Dependencies{
		Carts:       repository.NewCartRepo(redisCache, &cfg.Cart),
		Sessions:    repository.NewSessionRepo(redisClient),
		RateLimiter: repository.NewRateLimitRepo(redisClient, &cfg.RateConfig),
		Backend:     backendClient,
		Validate:    utils.NewValidator(),
		Config:      cfg,
	})
	if err != nil {
		slog.Error("❌ Error creating the storefront registry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer registry.Close()

	healthChecker, err := health.NewHealthHandler(cfg, backendClient.HealthURL())
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cartHandler := handlers.NewCartHandler(registry)
	authHandler := handlers.NewAuthHandler(registry)
	checkoutHandler := handlers.NewCheckoutHandler(registry)
	orderHandler := handlers.NewOrderHandler(registry)

	slog.Info("storefront initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/cart", cartHandler.GetCart())
	routerMux.HandleFunc("DELETE /api/v1/cart", cartHandler.ClearCart())
	routerMux.HandleFunc("POST /api/v1/cart/items", cartHandler.AddItem())
	routerMux.HandleFunc("PUT /api/v1/cart/items", cartHandler.UpdateQuantity())
	routerMux.HandleFunc("DELETE /api/v1/cart/items", cartHandler.RemoveItem())
	routerMux.HandleFunc("POST /api/v1/auth/login", authHandler.Login())
	routerMux.HandleFunc("POST /api/v1/auth/signup", authHandler.Signup())
	routerMux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout())
	routerMux.HandleFunc("GET /api/v1/auth/session", authHandler.Session())
	routerMux.HandleFunc("POST /api/v1/checkout", checkoutHandler.Start())
	routerMux.HandleFunc("GET /api/v1/checkout", checkoutHandler.View())
	routerMux.HandleFunc("DELETE /api/v1/checkout", checkoutHandler.Abandon())
	routerMux.HandleFunc("PUT /api/v1/checkout/shipping", checkoutHandler.SubmitShipping())
	routerMux.HandleFunc("POST /api/v1/checkout/back", checkoutHandler.Back())
	routerMux.HandleFunc("POST /api/v1/checkout/payment", checkoutHandler.SubmitPayment())
	routerMux.HandleFunc("GET /api/v1/orders", orderHandler.ListOrders())
	routerMux.HandleFunc("GET /api/v1/orders/{id}", orderHandler.GetOrder())

	// Operational endpoints stay outside the browsing session.
	opsMux := http.NewServeMux()
	opsMux.Handle("GET /health", healthChecker.Handler())
	opsMux.Handle("GET /metrics", metrics.Handler())
	opsMux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Middleware chaining
	var api http.Handler = metrics.Middleware(routerMux)
	api = middleware.AuthRedirect(cfg.Session.LoginPath)(api)
	api = middleware.StorefrontSession(&cfg.Session, int(cfg.Session.TTL.Seconds()))(api)

	opsMux.Handle("/api/", api)

	var handler http.Handler = middleware.Logging(opsMux)
	handler = otelhttp.NewHandler(handler, "storefront")

	// Setup http server
	server := http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.HTTPServer.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracer(shutdownCtx); err != nil {
		slog.Error("⚠️ Tracer shutdown encountered an issue", slog.String("error", err.Error()))
	}
}
