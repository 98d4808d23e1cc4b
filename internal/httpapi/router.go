package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"baydelivery/internal/api"
	"baydelivery/internal/backup"
	"baydelivery/internal/booking"
	"baydelivery/internal/job"
	"baydelivery/pkg/config"
)

// version is reported by /health so deploys are distinguishable.
const version = "0.1.0"

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool

	// Vault is nil when no remote snapshot store is configured; the
	// drive endpoints then answer 503.
	Vault backup.Vault
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"version":          version,
			"env":              deps.Cfg.AppEnv,
			"drive_configured": deps.Vault != nil,
		})
	})

	requestsRepo := booking.NewRepository(deps.DB)
	jobsRepo := job.NewRepository(deps.DB)
	bookingHandlers := booking.Handlers{
		DB:       deps.DB,
		Requests: requestsRepo,
		Jobs:     jobsRepo,
		Quotes:   booking.NewQuoteCache(booking.DefaultQuoteTTL),
	}
	backupHandlers := backup.Handlers{
		Service:   &backup.Service{DB: deps.DB},
		Vault:     deps.Vault,
		BackupDir: deps.Cfg.BackupDir,
	}

	// Public quote endpoints, used by the website widget from another
	// domain. Only allow CORS for explicitly configured origins.
	r.Group(func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAgeSeconds:  600,
		}))

		r.Post("/quote/calculate", bookingHandlers.Calculate)
		r.Post("/quote/{id}/decision", bookingHandlers.CustomerDecision)
	})

	// Operator APIs behind the admin bearer token.
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(api.AdminAuth(deps.Cfg.AdminToken))

		r.Get("/quote-requests", bookingHandlers.List)
		r.Get("/quote-requests/{id}", bookingHandlers.Get)
		r.Post("/quote-requests/{id}/decision", bookingHandlers.AdminDecision)
		r.Get("/jobs", bookingHandlers.ListJobs)

		r.Post("/backup/export", backupHandlers.Export)
		r.Post("/backup/import", backupHandlers.Import)

		r.Post("/drive/snapshot", backupHandlers.VaultSnapshot)
		r.Get("/drive/backups", backupHandlers.VaultList)
		r.Post("/drive/restore", backupHandlers.VaultRestore)
	})

	return r
}
