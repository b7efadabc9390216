package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"brokerage/src/api/handlers"
	"brokerage/src/api/middleware"
	"brokerage/src/config"
	"brokerage/src/events"
	"brokerage/src/models"
	"brokerage/src/repositories"
	"brokerage/src/services"
	redis_utils "brokerage/src/utils/redis"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router      *chi.Mux
	Handler     *handlers.Handler
	Auth        *middleware.Authenticator
	RateLimiter *middleware.UserRateLimiter
	Logger      logrus.FieldLogger

	closers []func() error
}

func NewServer(handler *handlers.Handler, auth *middleware.Authenticator, limiter *middleware.UserRateLimiter, logger logrus.FieldLogger) *Server {
	server := &Server{
		Router:      chi.NewRouter(),
		Handler:     handler,
		Auth:        auth,
		RateLimiter: limiter,
		Logger:      logger,
	}
	server.InitRoutes()
	return server
}

// Bootstrap wires repositories, services and middleware for the API. The role
// registry is loaded here once; Close releases the cache and event writer.
func Bootstrap(ctx context.Context, cfg *config.Config, db *pgxpool.Pool, logger logrus.FieldLogger) (*Server, error) {
	roleRecords, err := repositories.NewRoleRepository(db).GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}
	roles, err := models.NewRoleRegistry(roleRecords)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	cache := services.NewMemoryAssetCache(cfg.Databases.Redis.TTL)
	if cfg.Databases.Redis.Enabled() {
		handler, err := redis_utils.NewRedisHandler(ctx, cfg.Databases.Redis)
		if err != nil {
			return nil, err
		}
		cache = services.NewRedisAssetCache(handler, cfg.Databases.Redis.TTL)
		closers = append(closers, handler.Close)
	}

	publisher := events.NewPublisher(cfg.Kafka, logger)
	closers = append(closers, publisher.Close)

	userRepo := repositories.NewUserRepository(db)
	companyRepo := repositories.NewCompanyRepository(db)
	transactionRepo := repositories.NewTransactionRepository(db)
	accountService := services.NewAccountService(userRepo, repositories.NewHoldingRepository(db), transactionRepo)

	handler := handlers.NewHandler(
		services.NewTradeService(repositories.NewLedger(db), publisher),
		services.NewCatalogService(repositories.NewAssetRepository(db), companyRepo, cache),
		services.NewCompanyService(companyRepo),
		accountService,
		services.NewTransactionService(transactionRepo),
		cfg.Service.RequestTimeout,
	)
	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, accountService, roles)
	limiter := middleware.NewUserRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	server := NewServer(handler, auth, limiter, logger)
	server.closers = closers
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) Close() error {
	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) InitRoutes() {
	s.Router.Use(chimiddleware.RequestID)
	s.Router.Use(middleware.RequestLogger(s.Logger))
	s.Router.Use(chimiddleware.Recoverer)

	s.Router.Get("/alive", handlers.Healthcheck)

	s.Router.Route("/api", func(r chi.Router) {
		r.Use(s.Auth.Verifier())
		r.Use(s.Auth.Authenticate)

		r.Route("/trades", func(r chi.Router) {
			r.Use(s.RateLimiter.Limit)
			r.Post("/buy", s.Handler.Buy)
			r.Post("/sell", s.Handler.Sell)
		})

		r.Post("/balance/top-up", s.Handler.TopUpBalance)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", s.Handler.GetMe)
			r.Get("/holdings", s.Handler.GetMyHoldings)
			r.Get("/transactions", s.Handler.GetMyTransactions)
		})

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", s.Handler.GetAllAssets)
			r.Get("/search", s.Handler.SearchAssets)
			r.Get("/{id}", s.Handler.GetAssetByID)
			r.With(middleware.RequireAdmin).Post("/", s.Handler.CreateAsset)
			r.With(middleware.RequireAdmin).Patch("/{id}/price", s.Handler.UpdateAssetPrice)
		})

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", s.Handler.GetAllCompanies)
			r.Get("/{id}", s.Handler.GetCompanyByID)
			r.With(middleware.RequireAdmin).Post("/", s.Handler.CreateCompany)
			r.With(middleware.RequireAdmin).Patch("/{id}", s.Handler.UpdateCompany)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.Handler.GetAllTransactions)
			r.With(middleware.RequireAdmin).Get("/{id}", s.Handler.GetTransactionByID)
		})
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
