package main

import (
	"net/http"

	"github.com/CodingDyl/virtec-crm/auth"
	"github.com/CodingDyl/virtec-crm/gate"
	"github.com/CodingDyl/virtec-crm/httpx"
	"github.com/CodingDyl/virtec-crm/i18n"
	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/config"
	"github.com/CodingDyl/virtec-crm/internal/handlers"
	"github.com/CodingDyl/virtec-crm/internal/policy"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"github.com/CodingDyl/virtec-crm/pdf"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux  *http.ServeMux
	gate *policy.AuthGate
	log  *zap.Logger

	users      *services.UserService
	auth       *handlers.AuthHandler
	customers  *handlers.CustomerHandler
	projects   *handlers.ProjectHandler
	quotes     *handlers.QuoteHandler
	agreements *handlers.AgreementHandler
	artifacts  *handlers.ArtifactHandler
	dashboard  *handlers.DashboardHandler
	adminUsers *handlers.AdminUserHandler
	adminProfs *handlers.AdminProfileHandler
}

// NewApp builds services and handlers on top of db and store.
func NewApp(db *gorm.DB, store artifact.Store, cfg *config.Config, log *zap.Logger) *App {
	renderer := pdf.Renderer{}
	spend := services.NewSpendAggregator(db)
	users := services.NewUserService(db, log)
	ag := policy.NewAuthGate(db, cfg.App.ProfileCache, log)

	a := &App{
		mux:        http.NewServeMux(),
		gate:       ag,
		log:        log,
		users:      users,
		auth:       handlers.NewAuthHandler(users, log),
		customers:  handlers.NewCustomerHandler(services.NewCustomerService(db, spend, log), spend, log),
		projects:   handlers.NewProjectHandler(services.NewProjectService(db, log), log),
		quotes:     handlers.NewQuoteHandler(services.NewQuoteService(db, store, renderer, log, cfg.App.HourlyRate), log),
		agreements: handlers.NewAgreementHandler(services.NewAgreementService(db, store, renderer, log), cfg.Artifacts.MaxSize, log),
		artifacts:  handlers.NewArtifactHandler(store, log),
		dashboard:  handlers.NewDashboardHandler(services.NewDashboardService(db, spend), log),
		adminUsers: handlers.NewAdminUserHandler(users, ag, log),
		adminProfs: handlers.NewAdminProfileHandler(users, ag, log),
	}
	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := recoverer(a.log, requestLogger(a.log, auth.Middleware(withPreferences(a.mux))))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	health := func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	a.mux.HandleFunc("GET /health", health)
	a.mux.HandleFunc("GET /healthz", health)

	a.mux.HandleFunc("POST /login", a.auth.Login)
	a.mux.HandleFunc("POST /logout", a.auth.Logout)
	a.mux.Handle("GET /me", auth.RequireAuth(http.HandlerFunc(a.auth.Me)))

	a.mux.Handle("GET /dashboard/overview", a.protect("dashboard", gate.ActionView, a.dashboard.Overview))

	ch := a.customers
	a.mux.Handle("GET /customers", a.protect("customer", gate.ActionList, ch.List))
	a.mux.Handle("POST /customers", a.protect("customer", gate.ActionCreate, ch.Create))
	a.mux.Handle("GET /customers/{id}", a.protect("customer", gate.ActionView, ch.Get))
	a.mux.Handle("PATCH /customers/{id}", a.protect("customer", gate.ActionUpdate, ch.Update))
	a.mux.Handle("GET /customers/{id}/total-spent", a.protect("customer", gate.ActionView, ch.TotalSpent))

	ph := a.projects
	a.mux.Handle("GET /projects", a.protect("project", gate.ActionList, ph.List))
	a.mux.Handle("POST /projects", a.protect("project", gate.ActionCreate, ph.Create))
	a.mux.Handle("GET /projects/{id}", a.protect("project", gate.ActionView, ph.Get))
	a.mux.Handle("PATCH /projects/{id}", a.protect("project", gate.ActionUpdate, ph.Update))

	agh := a.agreements
	a.mux.Handle("POST /projects/{id}/agreement", a.protect("agreement", gate.ActionCreate, agh.Generate))
	a.mux.Handle("GET /projects/{id}/agreement", a.protect("agreement", gate.ActionView, agh.Document))
	a.mux.Handle("POST /projects/{id}/agreement/review", a.protect("agreement", gate.ActionReview, agh.Review))
	a.mux.Handle("POST /projects/{id}/agreement/signed", a.protect("agreement", gate.ActionSign, agh.UploadSigned))
	a.mux.Handle("DELETE /projects/{id}/agreement", a.protect("agreement", gate.ActionDelete, agh.Delete))

	qh := a.quotes
	a.mux.Handle("GET /quotes", a.protect("quote", gate.ActionList, qh.List))
	a.mux.Handle("POST /quotes", a.protect("quote", gate.ActionCreate, qh.Create))
	a.mux.Handle("POST /quotes/price", a.protect("quote", gate.ActionCreate, qh.Price))
	a.mux.Handle("GET /quotes/{id}", a.protect("quote", gate.ActionView, qh.Get))
	a.mux.Handle("DELETE /quotes/{id}", a.protect("quote", gate.ActionDelete, qh.Delete))
	a.mux.Handle("POST /quotes/{id}/status", a.protect("quote", gate.ActionUpdate, qh.UpdateStatus))
	a.mux.Handle("GET /quotes/{id}/pdf", a.protect("quote", gate.ActionView, qh.PDF))
	a.mux.Handle("GET /features", a.protect("quote", gate.ActionList, qh.Features))

	a.mux.Handle("GET /artifacts/{key...}", a.protect("artifact", gate.ActionView, a.artifacts.Download))

	a.mux.Handle("GET /admin/users", a.admin(a.adminUsers.List))
	a.mux.Handle("POST /admin/users", a.admin(a.adminUsers.Create))
	a.mux.Handle("POST /admin/users/{id}/profile", a.admin(a.adminUsers.AssignProfile))
	a.mux.Handle("GET /admin/profiles", a.admin(a.adminProfs.List))
	a.mux.Handle("POST /admin/profiles", a.admin(a.adminProfs.Create))
	a.mux.Handle("PUT /admin/profiles/{id}/permissions", a.admin(a.adminProfs.SetPermissions))
	a.mux.Handle("GET /admin/permissions", a.admin(a.adminProfs.Permissions))
}

// protect requires a verified session and resource:action.
func (a *App) protect(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequirePermission(resource, action)(h))
}

func (a *App) admin(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequireAdmin()(h))
}

// withPreferences resolves the response language from ?lang=, the lang
// cookie, then Accept-Language. A valid ?lang= is remembered in the cookie.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
