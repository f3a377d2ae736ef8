package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"persona-chat/internal/config"
	"persona-chat/internal/domain/user"
	"persona-chat/internal/infrastructure"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	v1 "persona-chat/internal/interfaces/httpserver/routes/v1"

	_ "persona-chat/docs/swagger"
)

const (
	readTimeout     = 15 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 30 * time.Second
	readyPingBudget = 2 * time.Second
)

type HTTPServer struct {
	engine  *gin.Engine
	infra   *infrastructure.Infrastructure
	v1Route *v1.V1Route
	users   *user.Service
	config  *config.Config
}

func (s *HTTPServer) bindSwagger() {
	if !s.config.EnableSwagger {
		return
	}
	s.engine.GET("/api/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func NewHttpServer(
	v1Route *v1.V1Route,
	infra *infrastructure.Infrastructure,
	users *user.Service,
	cfg *config.Config,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		gin.New(),
		infra,
		v1Route,
		users,
		cfg,
	}
	server.engine.Use(middleware.Recovery(infra.Logger))
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(infra.Logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	server.engine.GET("/readyz", server.readyz)
	server.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server.bindSwagger()
	server.registerRoutes()
	return &server
}

func (httpServer *HTTPServer) registerRoutes() {
	root := httpServer.engine.Group("/")
	httpServer.v1Route.RegisterPublicRouter(root, httpServer.readyz)

	// Protected routes (auth middleware applied)
	protected := httpServer.engine.Group("/")
	protected.Use(
		middleware.AuthMiddleware(httpServer.infra.Validator, httpServer.users, httpServer.infra.Logger),
		middleware.RateLimitMiddleware(httpServer.config.RequestsPerMinute),
	)
	httpServer.v1Route.RegisterRouter(protected)
}

// GetReadyz godoc
// @Summary Readiness check endpoint
// @Description Reports ready once the database answers and signing keys are loaded.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Readiness status ready"
// @Failure 503 {object} map[string]string "Not ready"
// @Router /v1/readyz [get]
func (httpServer *HTTPServer) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyPingBudget)
	defer cancel()

	if sqlDB, err := httpServer.infra.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "database"})
		return
	}
	if !httpServer.infra.Validator.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "signing keys"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Handler exposes the engine, mainly for tests.
func (httpServer *HTTPServer) Handler() http.Handler {
	return httpServer.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (httpServer *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpServer.config.HTTPPort),
		Handler:           httpServer.engine,
		ReadHeaderTimeout: readTimeout,
		IdleTimeout:       idleTimeout,
		// no WriteTimeout: chat responses stream for as long as the upstream does
	}

	errCh := make(chan error, 1)
	go func() {
		httpServer.infra.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	httpServer.infra.Logger.Info().Msg("http server stopped")
	return nil
}
