package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agendago/agendago/libs/clock"
	"github.com/agendago/agendago/libs/config"
	"github.com/agendago/agendago/libs/db"
	"github.com/agendago/agendago/libs/httpx"
	otelx "github.com/agendago/agendago/libs/otel"
	"github.com/agendago/agendago/libs/runtime"
	"github.com/agendago/agendago/schedule"
	"github.com/agendago/agendago/services/scheduler-service/internal/handlers"
	"github.com/agendago/agendago/services/scheduler-service/internal/storage"
)

func parseWeekStart(raw string, logger *slog.Logger) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "sunday":
		return time.Sunday
	case "monday":
		return time.Monday
	default:
		logger.Warn("unknown week start, using sunday", "value", raw)
		return time.Sunday
	}
}

func main() {
	service := config.String("SERVICE_NAME", "scheduler-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewAppointmentRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("schema setup failed", "err", err)
		panic(err)
	}
	users := storage.NewUserRepository(pool)

	gen := schedule.Generator{
		WeekStart: parseWeekStart(config.String("WEEK_START", "sunday"), logger),
	}
	handler := handlers.NewSchedulerHandler(repo, users, gen, clock.System(), logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/available", handler.Available)
	mux.HandleFunc("/calendar/week", handler.Week)
	mux.HandleFunc("/calendar/month", handler.Month)
	mux.HandleFunc("/appointments", handler.Appointments)
	mux.HandleFunc("/appointment", handler.Appointment)
	mux.HandleFunc("/appointment/", handler.AppointmentByID)
	mux.HandleFunc("/schedule", handler.Schedule)
	mux.HandleFunc("/auth/register", handler.Register)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecover(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduler")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
