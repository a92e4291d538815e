package api

import (
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/geoclick/clicktracker/docs"
	"github.com/geoclick/clicktracker/internal/api/handler"
	"github.com/geoclick/clicktracker/internal/api/metrics"
	"github.com/geoclick/clicktracker/internal/api/middleware"
	"github.com/geoclick/clicktracker/internal/core/domain"
	"github.com/geoclick/clicktracker/internal/core/ports"
	"github.com/geoclick/clicktracker/internal/infrastructure/config"
)

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Clicks ports.ClickService
	// Health maps dependency names to readiness checks.
	Health map[string]handler.Check
	Log    zerolog.Logger
}

type Options struct {
	CookieName         string
	CookieSecure       bool
	RegistrationPolicy string
	StaticDir          string
	LoginRateLimit     float64
	LoginRateBurst     int

	// TrustProxy takes the client address from X-Forwarded-For. Enable it
	// only behind a proxy that overwrites the header.
	TrustProxy bool

	// Registerer and Gatherer back the HTTP metrics and /metrics. They default
	// to the process-wide Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, opts Options) *echo.Echo {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.LoginRateLimit <= 0 || opts.LoginRateBurst <= 0 {
		opts.LoginRateLimit, opts.LoginRateBurst = 5, 10
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()
	e.JSONSerializer = handler.JSONSerializer{}
	e.IPExtractor = echo.ExtractIPDirect()
	if opts.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "clicktracker",
		Subsystem:  "http",
		Registerer: opts.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.Session(deps.Auth, opts.CookieName))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users, handler.CookieConfig{
		Name:   opts.CookieName,
		Secure: opts.CookieSecure,
	})
	userHandler := handler.NewUserHandler(deps.Users)
	clickHandler := handler.NewClickHandler(deps.Clicks)
	healthHandler := handler.NewHealthHandler(deps.Health, deps.Log)

	authenticated := middleware.RequireAuthenticated()

	// --- Auth routes ---
	e.POST("/login", authHandler.Login, loginRateLimiter(opts.LoginRateLimit, opts.LoginRateBurst))
	e.POST("/register", authHandler.Register, registrationGuard(opts.RegistrationPolicy)...)
	e.POST("/logout", authHandler.Logout)

	// --- Clicks and users ---
	e.POST("/save-click", clickHandler.SaveClick, authenticated)
	e.GET("/clicks", clickHandler.List, authenticated)
	e.GET("/report", clickHandler.Report, authenticated)
	e.GET("/users", userHandler.List, authenticated)

	// --- Health checks (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: opts.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Static client ---
	if opts.StaticDir != "" {
		e.GET("/*", echo.StaticDirectoryHandler(os.DirFS(opts.StaticDir), false), requireSessionFor("report.html"))
	}

	return e
}

// requireSessionFor rejects anonymous requests for the static file name under
// any spelling of its path: dot segments, doubled or trailing slashes and
// percent-encoding all resolve to the same file in the static handler.
func requireSessionFor(name string) echo.MiddlewareFunc {
	target := "/" + name
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Param("*")
			if unescaped, err := url.PathUnescape(p); err == nil {
				p = unescaped
			}
			if strings.EqualFold(path.Clean("/"+p), target) && middleware.CurrentSession(c) == nil {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}

func registrationGuard(policy string) []echo.MiddlewareFunc {
	if policy == config.RegistrationOpen {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.RequireAdmin()}
}

func loginRateLimiter(limit float64, burst int) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
