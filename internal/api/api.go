package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	api_utils "github.com/ethanbaker/api/pkg/utils"
	"github.com/ethanbaker/office-assistant/internal/actions"
	"github.com/ethanbaker/office-assistant/internal/api/auth"
	"github.com/ethanbaker/office-assistant/internal/stores/session"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	actions_module "github.com/ethanbaker/office-assistant/internal/api/modules/actions"
	assistant_module "github.com/ethanbaker/office-assistant/internal/api/modules/assistant"
	customers_module "github.com/ethanbaker/office-assistant/internal/api/modules/customers"
	health_module "github.com/ethanbaker/office-assistant/internal/api/modules/health"
)

// shutdownTimeout bounds how long in-flight requests may finish on shutdown
const shutdownTimeout = 10 * time.Second

// Services are the components exposed over HTTP
type Services struct {
	Registry  *actions.Registry
	Assistant assistant_module.Responder
	Sessions  session.Store
	Customers customers_module.Lister
}

// NewEngine builds the gin engine with every module registered under /api
func NewEngine(cfg *utils.Config, services Services) (*gin.Engine, error) {
	if services.Registry == nil || services.Assistant == nil || services.Sessions == nil || services.Customers == nil {
		return nil, errors.New("registry, assistant, session store and customers are required")
	}

	requireKey, err := auth.RequireAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	// Add app level settings/routes
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log.With().Str("component", "api").Logger()))
	engine.NoRoute(api_utils.NoRouteHandler)

	// Add trusted proxies
	if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	health_module.RegisterRoutes(baseGroup)
	actions_module.RegisterRoutes(baseGroup, services.Registry, requireKey)
	assistant_module.RegisterRoutes(baseGroup, services.Assistant, services.Sessions, requireKey)
	customers_module.RegisterRoutes(baseGroup, services.Customers, requireKey)

	return engine, nil
}

// Start serves the API on API_PORT until ctx is cancelled
func Start(ctx context.Context, cfg *utils.Config, services Services) error {
	engine, err := NewEngine(cfg, services)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.GetWithDefault("API_PORT", "8080"),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("api listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
