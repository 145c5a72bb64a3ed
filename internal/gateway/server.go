package gateway

import (
	"context"
	"log/slog"

	"bankdesk/internal/config"
	"bankdesk/internal/customer"
	"bankdesk/internal/guard"
	"bankdesk/internal/middleware"
	"bankdesk/internal/session"
	"bankdesk/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the local console gateway: an HTTP surface over the session and
// workspace controllers for whatever front-end the operator runs. It binds
// to localhost and holds no state of its own.
type Server struct {
	echo      *echo.Echo
	cfg       *config.GatewayConfig
	sessions  *session.Controller
	workspace *customer.Controller
	store     *store.Store
	logger    *slog.Logger
}

// NewServer wires the gateway routes and middleware.
func NewServer(cfg *config.GatewayConfig, sessions *session.Controller, workspace *customer.Controller, st *store.Store, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.HTTPErrorHandler = middleware.HTTPErrorHandler

	s := &Server{
		echo:      e,
		cfg:       cfg,
		sessions:  sessions,
		workspace: workspace,
		store:     st,
		logger:    logger,
	}

	e.Use(middleware.TraceID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.NewRateLimiter(20, 40).Middleware())

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/healthz", s.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/session", s.login)
	e.DELETE("/session", s.logout)
	e.GET("/session", s.whoami)
	e.POST("/session/register", s.register)

	protected := e.Group("", guard.RequireSession(s.sessions))
	protected.GET("/state", s.state)
	protected.GET("/events", s.events)
	protected.POST("/customers/select", s.selectCustomer)
	protected.POST("/customers/search", s.searchCustomers)
	protected.POST("/customers/create", s.createCustomer)
	protected.PUT("/customers/current", s.updateCustomer)
	protected.DELETE("/customers/current", s.deleteCustomer)
	protected.POST("/accounts", s.createAccount)
	protected.POST("/transactions/deposit", s.deposit)
	protected.POST("/transactions/withdraw", s.withdraw)
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("console gateway listening", "address", s.cfg.Address())
	return s.echo.Start(s.cfg.Address())
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
