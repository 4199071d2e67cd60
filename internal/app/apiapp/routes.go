package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AuvroIslam/Mio-sub001/internal/config"
	analyticsvc "github.com/AuvroIslam/Mio-sub001/internal/services/analytics"
	cooldownsvc "github.com/AuvroIslam/Mio-sub001/internal/services/cooldown"
	interestssvc "github.com/AuvroIslam/Mio-sub001/internal/services/interests"
	matchersvc "github.com/AuvroIslam/Mio-sub001/internal/services/matcher"
	"github.com/AuvroIslam/Mio-sub001/internal/transport/http/handlers"
)

type Dependencies struct {
	InterestsService *interestssvc.Service
	MatcherService   *matchersvc.Service
	CooldownService  *cooldownsvc.Service
	AnalyticsService *analyticsvc.Service
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	favoritesHandler := handlers.NewFavoritesHandler(deps.InterestsService, deps.AnalyticsService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatcherService)
	quotaHandler := handlers.NewQuotaHandler(deps.CooldownService)

	identityMW := IdentityMiddleware(deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Route("/v1", func(r chi.Router) {
		r.Use(identityMW)
		r.Post("/favorites", favoritesHandler.Add)
		r.Delete("/favorites/{item_id}", favoritesHandler.Remove)
		r.Get("/matches", matchesHandler.List)
		r.Post("/matches/find", matchesHandler.Find)
		r.Get("/quota", quotaHandler.Get)
	})
}
