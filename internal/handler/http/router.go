package http

import (
	"log/slog"
	"os"

	"github.com/edigital/workdesk-backend/internal/config"
	"github.com/edigital/workdesk-backend/internal/domain/user"
	"github.com/edigital/workdesk-backend/internal/handler/http/middleware"
	"github.com/edigital/workdesk-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(cfg config.AppConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workdesk-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Client-SSID", "X-SSID", "ssid"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendancePunch))
					r.Post("/punch-in", attendanceHandler.PunchIn)
					r.Post("/punch-out", attendanceHandler.PunchOut)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).
					Get("/me", attendanceHandler.GetMyAttendance)

				// Admin only
				r.Route("/admin", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Post("/mark", attendanceHandler.AdminMark)
					r.Post("/mark-out", attendanceHandler.AdminMarkOut)
					r.Get("/all", attendanceHandler.ListAttendance)
					r.Post("/unblock/{userID}", attendanceHandler.UnblockUser)
					r.Get("/blocked", attendanceHandler.ListBlockedUsers)
					r.Get("/config", attendanceHandler.AdmissionSettings)
				})
			})
		})
	})
	return r
}
