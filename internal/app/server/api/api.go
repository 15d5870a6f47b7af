// Clinician registration and login with bearer sessions.
// Case registry: create, list summaries, fetch full case.
// Wholesale document replace with edit-quota enforcement.

// POST /api/v1/auth/register  # Register clinician (public)
// POST /api/v1/auth/login     # Login (public)
// GET  /api/v1/health         # Liveness (public)
// GET  /api/v1/cases          # List case summaries (auth)
// POST /api/v1/cases          # Register a new case (auth)
// GET  /api/v1/cases/{id}     # Full case document (auth)
// PUT  /api/v1/cases/{id}     # Replace document (auth, quota-limited)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	casesAPI "casepad/internal/app/server/api/http/cases"
	cliniciansAPI "casepad/internal/app/server/api/http/clinicians"
	healthAPI "casepad/internal/app/server/api/http/health"
	"casepad/internal/app/server/api/http/middleware"
	"casepad/internal/app/server/api/http/middleware/auth"
	"casepad/internal/app/server/api/http/middleware/logger"
	"casepad/internal/app/server/config"
	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/clinician"
	"casepad/internal/domain/session"
	"casepad/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health     *healthAPI.Handler
	Clinicians *cliniciansAPI.Handler
	Cases      *casesAPI.Handler
}

// New builds the chi mux with every operation registered through huma.
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("CasePad API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(storage, cfg, log)
	h.Health.SetupRoutes(API)
	h.Clinicians.SetupRoutes(API)
	h.Cases.SetupRoutes(API)

	return mux
}

func handlers(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *Handlers {
	sessionRepo := postgres.NewSessionRepository(storage.Pool(), log)
	sessionService := session.NewService(sessionRepo, log)
	authMW := auth.New(sessionService, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	clinicianRepo := postgres.NewClinicianRepository(storage.Pool(), log)
	clinicianService := clinician.NewService(clinicianRepo, clinician.NewPasswordValidator(), log)
	middlewares.Add(loggerMW.Middleware())
	cliniciansHandler := cliniciansAPI.NewHandler(clinicianService, sessionService, log, middlewares.GetAllAndClear())

	caseRepo := postgres.NewCaseRepository(storage.Pool(), log)
	caseService := caserecord.NewService(caseRepo, log, &caserecord.ServiceConfig{
		DefaultEditQuota: cfg.Cases.DefaultEditQuota,
	})
	middlewares.Add(authMW.Middleware())
	middlewares.Add(loggerMW.Middleware())
	casesHandler := casesAPI.NewHandler(caseService, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:     healthHandler,
		Clinicians: cliniciansHandler,
		Cases:      casesHandler,
	}
}
