package main

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"autoparc/internal/auth"
	"autoparc/internal/blob"
	"autoparc/internal/gate"
	"autoparc/internal/handlers"
	"autoparc/internal/middleware"
	"autoparc/internal/policy"
	"autoparc/internal/services"
	"autoparc/internal/view"
)

// App bundles the wired dependencies behind one http.Handler.
type App struct {
	DB      *gorm.DB
	Gate    *policy.AuthGate
	Handler http.Handler
}

// NewApp wires services, handlers and middleware into the route table.
func NewApp(dbConn *gorm.DB, blobs blob.Store) *App {
	ag := policy.NewAuthGate(dbConn, 5*time.Minute)

	commandes := services.NewCommandeService(dbConn, ag)
	conteneurs := services.NewConteneurService(dbConn, ag)
	pieces := services.NewPieceService(dbConn, ag)
	factures := services.NewFactureService(dbConn, ag)

	authH := handlers.NewAuthHandler(dbConn)
	dashH := handlers.NewDashboardHandler(dbConn)
	cmdH := handlers.NewCommandeHandler(dbConn, commandes, blobs)
	ctrH := handlers.NewConteneurHandler(dbConn, conteneurs)
	clientH := handlers.NewClientHandler(dbConn)
	pieceH := handlers.NewPieceHandler(dbConn, pieces)
	factureH := handlers.NewFactureHandler(dbConn, factures)
	vehiculeH := handlers.NewVehiculeHandler(dbConn)
	adminH := handlers.NewAdminHandler(dbConn, ag)

	// Templates check permissions through the gate to hide forbidden actions;
	// the gate check in the service layer remains the enforcement point.
	view.SetCanProfileResolver(func(r *http.Request, resource, action string) bool {
		return ag.CanProfile(r.Context(), gate.Action(action), resource)
	})
	view.SetIsAdminResolver(func(r *http.Request) bool {
		return ag.CanProfile(r.Context(), "*", "*")
	})

	loginLimiter := middleware.NewRateLimiter(1, 5)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.UserIDFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})

	mux.HandleFunc("GET /login", authH.LoginPage)
	mux.Handle("POST /login", loginLimiter.Middleware(http.HandlerFunc(authH.Login)))
	mux.HandleFunc("GET /signup", authH.SignupPage)
	mux.Handle("POST /signup", loginLimiter.Middleware(http.HandlerFunc(authH.Signup)))
	mux.HandleFunc("POST /logout", authH.Logout)
	mux.HandleFunc("GET /logout", authH.Logout)

	authed := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	gated := func(resource string, action gate.Action, h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(ag.RequirePermission(resource, action)(h))
	}

	mux.Handle("GET /dashboard", authed(dashH.Home))
	mux.Handle("GET /stock", authed(dashH.Stock))

	mux.Handle("GET /commandes", authed(cmdH.List))
	mux.Handle("GET /commandes/{id}", authed(cmdH.Show))
	mux.Handle("POST /commandes", gated("commande", gate.ActionCreate, cmdH.Create))
	mux.Handle("POST /commandes/{id}/advance", authed(cmdH.Advance))
	mux.Handle("POST /commandes/{id}/flag", gated("commande", gate.ActionFlag, cmdH.SetFlag))
	mux.Handle("POST /commandes/{id}/delete", gated("commande", gate.ActionDelete, cmdH.Delete))
	mux.Handle("DELETE /commandes/{id}", gated("commande", gate.ActionDelete, cmdH.Delete))
	mux.Handle("POST /commandes/{id}/fiche", gated("commande", gate.ActionUpdate, cmdH.UploadFiche))
	mux.Handle("POST /commandes/{id}/facture", gated("facture", gate.ActionCreate, factureH.Create))

	mux.Handle("GET /conteneurs", authed(ctrH.List))
	mux.Handle("GET /conteneurs/{id}", authed(ctrH.Show))
	mux.Handle("POST /conteneurs", gated("conteneur", gate.ActionCreate, ctrH.Create))
	mux.Handle("POST /conteneurs/{id}/advance", authed(ctrH.Advance))
	mux.Handle("POST /conteneurs/{id}/cascade", gated("conteneur", gate.ActionCascade, ctrH.Cascade))
	mux.Handle("POST /conteneurs/{id}/subcases", gated("conteneur", gate.ActionUpdate, ctrH.CreateSubcase))
	mux.Handle("POST /conteneurs/{id}/verifications", gated("conteneur", gate.ActionUpdate, ctrH.RecordVerification))

	mux.Handle("GET /clients", authed(clientH.List))
	mux.Handle("GET /clients/{id}", authed(clientH.Show))
	mux.Handle("POST /clients", gated("client", gate.ActionCreate, clientH.Create))

	mux.Handle("GET /vehicules", authed(vehiculeH.List))
	mux.Handle("POST /vehicules", gated("vehicule", gate.ActionCreate, vehiculeH.Create))

	mux.Handle("GET /pieces", authed(pieceH.List))
	mux.Handle("POST /pieces/{id}/traitement", gated("piece", gate.ActionUpdate, pieceH.SetTraitement))
	mux.Handle("POST /pieces/{id}/verification", gated("piece", gate.ActionUpdate, pieceH.SetVerification))

	admin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(ag.RequireAdmin()(h))
	}
	mux.Handle("GET /admin/profiles", admin(adminH.Profiles))
	mux.Handle("POST /admin/profiles/{id}/permissions", admin(adminH.UpdatePermissions))
	mux.Handle("POST /admin/users/{id}/profile", admin(adminH.AssignProfile))

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir("uploads"))))

	handler := middleware.Prefs(auth.Middleware(middleware.Logging(mux)))
	return &App{DB: dbConn, Gate: ag, Handler: handler}
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Handler.ServeHTTP(w, r)
}
