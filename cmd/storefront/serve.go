package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"

	"github.com/pokedeck/storefront/internal/auth"
	"github.com/pokedeck/storefront/internal/catalog"
	"github.com/pokedeck/storefront/internal/payments"
	"github.com/pokedeck/storefront/internal/platform/config"
	"github.com/pokedeck/storefront/internal/platform/database"
	"github.com/pokedeck/storefront/internal/platform/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	// Initialize OpenTelemetry
	providers, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down telemetry: %v", err)
		}
	}()

	tracer := otel.Tracer(cfg.Telemetry.ServiceName)

	// Initialize database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	r := newRouter(cfg)

	catalogHandler := catalog.NewCatalogHandler(
		catalog.NewCatalogUseCase(catalog.NewRepository(pool), catalog.NewDiskImageStore(cfg.Server.ImageDir)),
		tracer,
	)
	catalogHandler.RegisterRoutes(r)

	authHandler := auth.NewAuthHandler(
		auth.NewAuthUseCase(auth.NewRepository(pool), 0),
		tracer,
	)
	authHandler.RegisterRoutes(r)

	paymentHandler := payments.NewPaymentHandler(
		payments.NewPaymentUseCase(
			payments.NewRepository(pool),
			payments.NewPayPalClient(cfg.PayPal, cfg.Store),
			cfg.Store.Currency,
			cfg.Store.Name,
		),
		tracer,
	)
	paymentHandler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 Storefront listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("🛑 Shutting down storefront")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter monta o engine gin com middlewares, health check e imagens estáticas
func newRouter(cfg config.Config) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20
	r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	r.Use(corsMiddleware(cfg.Server.AllowedOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.Static("/images", cfg.Server.ImageDir)

	return r
}

// corsMiddleware libera a SPA; "*" aceita qualquer origem
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           10 * time.Minute,
	}
	if allowedOrigin == "" || allowedOrigin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = strings.Split(allowedOrigin, ",")
		for i := range cfg.AllowOrigins {
			cfg.AllowOrigins[i] = strings.TrimSpace(cfg.AllowOrigins[i])
		}
	}
	return cors.New(cfg)
}
