package worker

import (
	"net/http"
	"time"

	"brokerage/src/config"
	"brokerage/src/repositories"
	"brokerage/src/services"
	"brokerage/src/worker/controllers"
	handlers "brokerage/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler *handlers.Handler
}

func NewServer(controller *controllers.Controller) *Server {
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: handlers.NewHandler(controller),
	}
	server.InitRoutes()
	return server
}

// Bootstrap builds the worker and schedules the invariant audit from config.
func Bootstrap(cfg *config.Config, db *pgxpool.Pool, logger logrus.FieldLogger) (*Server, error) {
	controller := controllers.NewController(services.NewAuditService(repositories.NewAuditRepository(db)), logger)
	if _, err := controller.ScheduleAudit(cfg.Audit.CronSpec); err != nil {
		return nil, err
	}
	return NewServer(controller), nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) Close() error {
	s.Handler.Controller.StopAll()
	return nil
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", s.Handler.Healthcheck)
	s.Router.Route("/api/audit", func(r chi.Router) {
		r.Post("/run", s.Handler.RunAudit)
		r.Post("/schedule", s.Handler.ScheduleAudit)
	})
}

func NewHTTPServer(server *Server, port string) *http.Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      server,
	}
	return httpServer
}
