package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/application/commands"
	"github.com/brenobaldassim/cpsm-service/internal/application/use_cases"
	"github.com/brenobaldassim/cpsm-service/internal/config"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/handlers"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/persistence/postgres"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/persistence/redis"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/ratelimit"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/clock"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	rateLimiter    *ratelimit.Limiter
	healthHandler  *handlers.HealthHandler
	saleHandler    *handlers.SaleHandler
	productHandler *handlers.ProductHandler
	clientHandler  *handlers.ClientHandler
}

func NewServer(cfg *config.Config, conn *postgres.Connection, redisConn *redis.Connection, log *logger.Logger) *Server {
	clientRepo := postgres.NewClientRepository(conn)
	productRepo := postgres.NewProductRepository(conn)
	saleRepo := postgres.NewSaleRepository(conn)
	uow := postgres.NewUnitOfWork(conn)

	cache := redis.NewCache(redisConn, log)
	clk := clock.NewRealClock()

	createSaleUseCase := use_cases.NewCreateSaleUseCase(
		clientRepo,
		productRepo,
		uow,
		cache,
		clk,
		log,
		cfg.Sales.CommitRetryAttempts,
	)
	createSaleHandler := commands.NewCreateSaleHandler(createSaleUseCase, log)

	var rateLimiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewLimiter(
			cfg.RateLimit.RequestsPerMinute,
			time.Duration(cfg.RateLimit.SweepSeconds)*time.Second,
			clk,
			log,
		)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:         server,
		logger:         log,
		rateLimiter:    rateLimiter,
		healthHandler:  handlers.NewHealthHandler(conn.GetDB(), redisConn.GetClient(), log),
		saleHandler:    handlers.NewSaleHandler(createSaleHandler, saleRepo, log),
		productHandler: handlers.NewProductHandler(productRepo, cache, log),
		clientHandler:  handlers.NewClientHandler(clientRepo, log),
	}
}

// RateLimiter exposes the limiter so main can own its sweep lifecycle.
func (s *Server) RateLimiter() *ratelimit.Limiter {
	return s.rateLimiter
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
