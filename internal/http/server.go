package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"khosta-backend-go/internal/config"
	"khosta-backend-go/internal/models"
	"khosta-backend-go/internal/services"
	"khosta-backend-go/internal/store"
)

type Server struct {
	Config    config.Config
	Store     store.Store
	Logger    *zap.Logger
	Tokens    services.TokenService
	Records   *services.RecordService
	Visitors  *services.VisitorService
	Visits    *services.VisitService
	Users     *services.UserService
	Reports   *services.ReportService
	Dashboard *services.DashboardService
	Media     *services.MediaService
	Hub       *services.DashboardHub
	started   time.Time
}

// NewServer wires every use case to st. Mutating services notify the
// dashboard hub; the caller owns the hub goroutine via Hub.Run.
func NewServer(st store.Store, cfg config.Config, logger *zap.Logger) *Server {
	tokens := services.TokenService{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  time.Duration(cfg.AccessTTLSeconds) * time.Second,
		RefreshTTL: time.Duration(cfg.RefreshTTLSeconds) * time.Second,
	}
	dashboard := &services.DashboardService{Store: st}
	hub := services.NewDashboardHub(dashboard.Load, logger.Named("dashboard"))
	return &Server{
		Config:    cfg,
		Store:     st,
		Logger:    logger,
		Tokens:    tokens,
		Records:   &services.RecordService{Store: st, Notifier: hub, Logger: logger},
		Visitors:  &services.VisitorService{Store: st, Notifier: hub, Logger: logger},
		Visits:    &services.VisitService{Store: st, Notifier: hub, Logger: logger},
		Users:     &services.UserService{Store: st, Tokens: tokens, Logger: logger},
		Reports:   &services.ReportService{Store: st, Logger: logger},
		Dashboard: dashboard,
		Media:     &services.MediaService{BasePath: cfg.MediaStoragePath, Logger: logger},
		Hub:       hub,
		started:   time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(s.Logger))
	if len(s.Config.CorsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.Config.CorsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	all := RequireAnyRole(models.Roles...)
	operators := RequireAnyRole(models.RoleAdmin, models.RoleAgent)
	reporting := RequireAnyRole(models.RoleAdmin, models.RoleDirector)
	admins := RequireAnyRole(models.RoleAdmin)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", s.Login)
		api.Post("/auth/refresh", s.Refresh)
		api.Post("/auth/logout", s.Logout)

		api.Group(func(authed chi.Router) {
			authed.Use(WithAuth(s.Tokens))
			authed.With(all).Get("/auth/me", s.Me)
			authed.With(all).Get("/dashboard", s.GetDashboard)

			authed.Route("/records", func(records chi.Router) {
				records.With(all).Get("/", s.ListRecords)
				records.With(all).Get("/recent", s.RecentRecords)
				records.With(all).Get("/{recordId}", s.GetRecord)
				records.With(operators).Post("/", s.CreateRecord)
				records.With(operators).Put("/{recordId}", s.UpdateRecord)
				records.With(operators).Delete("/{recordId}", s.DeleteRecord)
			})

			authed.Route("/visitors", func(visitors chi.Router) {
				visitors.Use(operators)
				visitors.Get("/", s.ListVisitors)
				visitors.Post("/", s.RegisterVisitor)
				visitors.Get("/{visitorId}", s.GetVisitor)
				visitors.Put("/{visitorId}", s.UpdateVisitor)
				visitors.Put("/{visitorId}/active", s.SetVisitorActive)
				visitors.Delete("/{visitorId}", s.DeleteVisitor)
			})

			authed.Route("/visits", func(visits chi.Router) {
				visits.Use(operators)
				visits.Get("/", s.ListVisits)
				visits.Post("/", s.LogVisit)
			})

			authed.Route("/reports", func(reports chi.Router) {
				reports.Use(reporting)
				reports.Get("/{kind}", s.GetReport)
				reports.Get("/{kind}/export", s.ExportReport)
			})

			authed.Route("/users", func(users chi.Router) {
				users.Use(admins)
				users.Get("/", s.ListUsers)
				users.Post("/", s.CreateUser)
				users.Get("/{userId}", s.GetUser)
				users.Put("/{userId}", s.UpdateUser)
				users.Put("/{userId}/active", s.SetUserActive)
				users.Delete("/{userId}", s.DeleteUser)
			})

			authed.Route("/media", func(media chi.Router) {
				media.With(operators).Post("/{bucket}", s.UploadPhoto)
				media.With(all).Get("/{bucket}/{assetId}", s.PhotoContent)
				media.With(operators).Delete("/{bucket}/{assetId}", s.DeletePhoto)
			})

			authed.With(admins).Get("/system/host", s.HostInfo)
		})
	})

	r.Get("/ws/dashboard", s.DashboardSocket)
	r.Get("/health", s.Health)
	r.Get("/health/live", s.Live)
	r.Get("/health/ready", s.Ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
