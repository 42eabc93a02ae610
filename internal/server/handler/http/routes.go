package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spincity/backoffice/internal/middleware"
	"github.com/spincity/backoffice/internal/models"
	"github.com/spincity/backoffice/internal/service"
	"github.com/spincity/backoffice/internal/session"
	"github.com/spincity/backoffice/internal/settings"
	"github.com/spincity/backoffice/internal/store"
)

// NewRouter constructs the HTTP handler serving the back-office API.
//
// Sale mutations are routed through the sales service so the inventory
// status side effects apply; every other collection talks to the store
// directly. The session gate holds back mutations until the bootstrapper
// has finished loading.
func NewRouter(
	st *store.Store,
	sales *service.SalesService,
	backup *service.BackupService,
	set *settings.Service,
	boot *session.Bootstrapper,
	now session.Clock,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.AllowContentType("application/json"))
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics)
	r.Use(middleware.SessionGate(boot))

	authHandler := &AuthHandler{Session: boot}
	settingsHandler := &SettingsHandler{Settings: set, Log: logger}
	backupHandler := &BackupHandler{Backup: backup, Settings: set, Log: logger}

	users := &CollectionHandler[models.User]{Name: "users", Col: st.Users, Log: logger}
	contacts := &CollectionHandler[models.Contact]{
		Name: "contacts",
		Col:  st.Contacts,
		Log:  logger,
		// New contacts get a creation date for reporting.
		Prepare: func(c models.Contact) models.Contact {
			if c.CreatedAt == "" {
				c.CreatedAt = now().Format("2006-01-02")
			}
			return c
		},
	}
	rentals := &CollectionHandler[models.Rental]{
		Name: "rentals",
		Col:  st.Rentals,
		Log:  logger,
		// The monthly rate is derived from the plan.
		Prepare: func(rec models.Rental) models.Rental {
			if rec.MonthlyRate == 0 {
				rec.MonthlyRate = models.RateForPlan(rec.Plan)
			}
			return rec
		},
	}
	repairs := &CollectionHandler[models.Repair]{Name: "repairs", Col: st.Repairs, Log: logger}
	inventory := &CollectionHandler[models.InventoryItem]{Name: "inventory", Col: st.Inventory, Log: logger}
	salesHandler := &CollectionHandler[models.Sale]{Name: "sales", Col: sales, Log: logger}
	vendors := &CollectionHandler[models.Vendor]{Name: "vendors", Col: st.Vendors, Log: logger}

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.State)

		r.Route("/users", users.Mount)
		r.Route("/contacts", contacts.Mount)
		r.Route("/rentals", rentals.Mount)
		r.Route("/repairs", repairs.Mount)
		r.Route("/inventory", inventory.Mount)
		r.Route("/sales", salesHandler.Mount)
		r.Route("/vendors", vendors.Mount)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/sms", settingsHandler.GetSms)
			r.Put("/sms", settingsHandler.PutSms)
			r.Put("/admin-key", settingsHandler.PutAdminKey)
			r.Get("/logo", settingsHandler.GetLogo)
			r.Put("/logo", settingsHandler.PutLogo)
			r.Get("/splash-logo", settingsHandler.GetSplashLogo)
			r.Put("/splash-logo", settingsHandler.PutSplashLogo)
		})

		r.Get("/backup", backupHandler.Export)
		r.Post("/restore", backupHandler.Restore)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
