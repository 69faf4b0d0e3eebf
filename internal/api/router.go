package api

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/flotacare/fleet-console/docs"
	"github.com/flotacare/fleet-console/internal/api/handler"
	"github.com/flotacare/fleet-console/internal/api/metrics"
	"github.com/flotacare/fleet-console/internal/api/middleware"
	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/ports"
	"github.com/flotacare/fleet-console/internal/core/service"
	"github.com/flotacare/fleet-console/internal/infrastructure/http/handlers"
)

// ConsoleDeps are the collaborators of the console shell.
type ConsoleDeps struct {
	Session       handler.SessionManager
	Activity      handler.ActivityPublisher
	Routes        *service.RouteTable
	Backend       handler.Forwarder
	Checks        map[string]handlers.Checker
	WSAllowOrigin string
	Log           zerolog.Logger
	// Registerer receives the HTTP metrics. Nil means the default registry.
	Registerer    prometheus.Registerer
}

// BackendDeps are the collaborators of the development auth API.
type BackendDeps struct {
	AuthService ports.AuthService
	JWTSecret   string
	Checks      map[string]handlers.Checker
	Log         zerolog.Logger
	Registerer  prometheus.Registerer
}

// NewConsoleRouter builds the console shell: one gated view per route
// rule plus the session API.
func NewConsoleRouter(deps ConsoleDeps) *echo.Echo {
	e := newEcho(deps.Log, deps.Registerer, "fleet_console_http")

	// --- Dependencies ---
	sessionHandler := handler.NewSessionHandler(deps.Session, deps.Activity)
	viewHandler := handler.NewViewHandler(deps.Session, deps.Routes)
	streamHandler := handler.NewStreamHandler(deps.Session, deps.WSAllowOrigin, deps.Log)
	forwardHandler := handler.NewForwardHandler(deps.Session, deps.Backend)
	deps.Session.Watch(recordTransitions())

	// --- Views ---
	e.GET(domain.PathLogin, viewHandler.Login)
	for _, rule := range deps.Routes.Rules() {
		e.GET(rule.Path, viewHandler.Render(rule), middleware.Gate(deps.Session, rule))
	}
	e.GET("/navigation", viewHandler.Navigation)

	// --- Session API ---
	s := e.Group("/session")
	s.GET("", sessionHandler.Get)
	s.POST("/login", sessionHandler.Login)
	s.POST("/logout", sessionHandler.Logout)
	s.PUT("/user", sessionHandler.UpdateUser)
	s.POST("/activity", sessionHandler.Activity)
	s.POST("/activity/batch", sessionHandler.ActivityBatch)
	s.POST("/idle", sessionHandler.ResolveIdle)
	s.GET("/ws", streamHandler.Stream)

	// --- Backend relay ---
	if deps.Backend != nil {
		e.Any("/api/*", forwardHandler.Forward)
	}

	registerOps(e, deps.Checks)
	return e
}

// NewBackendRouter builds the development auth API.
func NewBackendRouter(deps BackendDeps) *echo.Echo {
	e := newEcho(deps.Log, deps.Registerer, "fleet_api_http")

	authHandler := handler.NewAuthHandler(deps.AuthService)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Admin routes ---
	e.POST("/users", authHandler.Register, authMiddleware, middleware.RBAC(domain.RoleAdministrador))

	registerOps(e, deps.Checks)
	return e
}

func newEcho(log zerolog.Logger, reg prometheus.Registerer, subsystem string) *echo.Echo {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  subsystem,
		Registerer: reg,
		Skipper:    func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/session/ws"
		},
	}))
	return e
}

// registerOps adds the probes, metrics and API docs.
func registerOps(e *echo.Echo, checks map[string]handlers.Checker) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}

// recordTransitions counts every change of session state.
func recordTransitions() func(domain.Snapshot) {
	var (
		mu   sync.Mutex
		last domain.SessionState
	)
	return func(s domain.Snapshot) {
		state := s.State()
		mu.Lock()
		changed := state != last
		last = state
		mu.Unlock()
		if changed && state != domain.StateInitializing {
			metrics.SessionTransitionsTotal.WithLabelValues(string(state)).Inc()
		}
	}
}
