package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/jfrancis537/budget-oracle-sub000/internal/auth"
	"github.com/jfrancis537/budget-oracle-sub000/internal/config"
	"github.com/jfrancis537/budget-oracle-sub000/internal/handlers"
	"github.com/jfrancis537/budget-oracle-sub000/internal/models"
	"github.com/jfrancis537/budget-oracle-sub000/internal/notifications"
	"github.com/jfrancis537/budget-oracle-sub000/internal/projection"
	"github.com/jfrancis537/budget-oracle-sub000/internal/repository"
)

// Dependencies содержит общие компоненты, которые сервер получает от main.
type Dependencies struct {
	DB          *pgxpool.Pool
	Projections *projection.Service
	Hub         *notifications.Hub
	Tokens      *auth.TokenManager
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, deps Dependencies) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	if len(cfg.Server.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.AllowedOrigins,
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	ledgerRepo := repository.NewLedgerRepository(deps.DB)

	registerRoutes(e, routeHandlers{
		health:        handlers.Health(deps.DB),
		bills:         handlers.NewBillHandler(repository.NewBillRepository(deps.DB), deps.Projections),
		incomes:       handlers.NewIncomeHandler(repository.NewIncomeRepository(deps.DB), deps.Projections),
		debts:         handlers.NewLedgerHandler(ledgerRepo, models.LedgerKindDebt, deps.Projections),
		accounts:      handlers.NewLedgerHandler(ledgerRepo, models.LedgerKindAccount, deps.Projections),
		investments:   handlers.NewInvestmentHandler(repository.NewInvestmentRepository(deps.DB), deps.Projections),
		schedules:     handlers.NewScheduleHandler(repository.NewPaymentScheduleRepository(deps.DB), repository.NewVestScheduleRepository(deps.DB), deps.Projections),
		projection:    handlers.NewProjectionHandler(deps.Projections),
		notifications: handlers.NewNotificationHandler(deps.Hub, deps.Projections),
	},
		auth.JWTMiddleware(deps.Tokens),
		apiRateLimiter(cfg.Auth),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if householdID, ok := auth.HouseholdIDFromContext(c); ok {
				attrs = append(attrs, slog.String("household_id", householdID.String()))
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func apiRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
