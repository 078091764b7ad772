package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edigital/workdesk-backend/internal/config"
	appHTTP "github.com/edigital/workdesk-backend/internal/handler/http"
	"github.com/edigital/workdesk-backend/internal/pkg/database"
	"github.com/edigital/workdesk-backend/internal/pkg/jwt"
	"github.com/edigital/workdesk-backend/internal/repository/postgresql"
	attendanceService "github.com/edigital/workdesk-backend/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		if err := database.EnsureSchema(ctx, db); err != nil {
			log.Fatal("Failed to apply schema: ", err)
		}
	}

	userRepo := postgresql.NewUserRepository(db)

	var ledger attendanceService.Ledger
	switch cfg.Attendance.Schema {
	case config.SchemaPaired:
		ledger = attendanceService.NewPairedLedger(postgresql.NewAttendanceRepository(db))
	case config.SchemaLegacy:
		ledger = attendanceService.NewLegacyLedger(postgresql.NewLegacyAttendanceRepository(db))
	default:
		log.Fatal("Unsupported attendance schema: ", cfg.Attendance.Schema)
	}
	slog.Info("Attendance ledger ready", "schema", cfg.Attendance.Schema)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(
		postgresql.NewTxManager(db),
		userRepo,
		ledger,
		cfg.Attendance,
	)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	router := appHTTP.NewRouter(cfg.App, JWTService, attendanceHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	slog.Info("Server stopped")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
