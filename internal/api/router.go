package api

import (
	"gamification_hub/internal/api/handler"
	"gamification_hub/internal/api/middleware"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/common"
	"gamification_hub/internal/common/security"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	Auth          *service.AuthService
	Challenges    *service.ChallengeService
	Solutions     *service.SolutionService
	Notifications *service.NotificationService
	Leaderboard   *service.LeaderboardService
	Admin         *service.AdminService
}

func NewRouter(svc Services, log *httplog.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(httplog.RequestLogger(log))
	r.Use(middleware.RequestLogContext)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Verifier only parses the bearer token; routes opt into Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		handler.NewAuthHandler(svc.Auth).RegisterRoutes(v1)
		v1.Route("/challenges", handler.NewChallengeHandler(svc.Challenges).RegisterRoutes)
		v1.Route("/solutions", handler.NewSolutionHandler(svc.Solutions).RegisterRoutes)
		v1.Route("/notifications", handler.NewNotificationHandler(svc.Notifications).RegisterRoutes)
		v1.Route("/leaderboard", handler.NewLeaderboardHandler(svc.Leaderboard).RegisterRoutes)
		v1.Route("/admin", handler.NewAdminHandler(svc.Admin).RegisterRoutes)
	})

	return r
}
