// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	adminfeature "github.com/artom-sites/choirhub/internal/app/features/admin"
	authgooglefeature "github.com/artom-sites/choirhub/internal/app/features/authgoogle"
	groupsfeature "github.com/artom-sites/choirhub/internal/app/features/groups"
	groupstatsfeature "github.com/artom-sites/choirhub/internal/app/features/groupstats"
	healthfeature "github.com/artom-sites/choirhub/internal/app/features/health"
	loginfeature "github.com/artom-sites/choirhub/internal/app/features/login"
	logoutfeature "github.com/artom-sites/choirhub/internal/app/features/logout"
	servicesfeature "github.com/artom-sites/choirhub/internal/app/features/services"
	userinfofeature "github.com/artom-sites/choirhub/internal/app/features/userinfo"
	"github.com/artom-sites/choirhub/internal/app/identity"
	"github.com/artom-sites/choirhub/internal/app/membership"
	"github.com/artom-sites/choirhub/internal/app/stats"
	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	statsstore "github.com/artom-sites/choirhub/internal/app/store/stats"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. ChoirHub is a JSON API: the
// session middleware loads the caller identity, public routes are the
// health check and the auth endpoints, and everything else sits behind
// RequireSignedIn.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	services := servicestore.New(db)
	summaries := statsstore.New(db)
	principals := principalstore.New(db)
	notifications := notificationstore.New(db)

	syncer := identity.NewSyncer(users, principals, appCfg.SuperAdminEmails, logger)
	authorizer := identity.NewAuthorizer(users, principals, logger)

	aggregator := stats.NewAggregator(db, logger, groups, services, summaries)
	backfill := stats.NewBackfill(groups, services, summaries, logger)

	engine := membership.NewEngine(membership.Deps{
		DB:         db,
		Log:        logger,
		Users:      users,
		Groups:     groups,
		Services:   services,
		Stats:      summaries,
		Principals: principals,
		Authz:      authorizer,
		Syncer:     syncer,
		Recompute:  aggregator.Recompute,
	})

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the session user into context so
	// handlers can use auth.CurrentUser / authz.CallerUID.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication (public)
	loginHandler := loginfeature.NewHandler(users, principals, sessionMgr, syncer, logger)
	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	googleHandler := authgooglefeature.NewHandler(users, principals, sessionMgr, syncer,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Route("/auth", func(ar chi.Router) {
		loginfeature.Register(ar, loginHandler)
		logoutfeature.Register(ar, logoutHandler)
		authgooglefeature.Register(ar, googleHandler)
	})

	// Everything below requires a signed-in caller.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		// Group membership, nested service planning, and stats
		groupsHandler := groupsfeature.NewHandler(engine, logger)
		servicesHandler := servicesfeature.NewHandler(services, groups, notifications, authorizer, logger)
		statsHandler := groupstatsfeature.NewHandler(summaries, authorizer, logger)

		groupsRouter := groupsfeature.Routes(groupsHandler)
		groupsRouter.Mount("/{groupID}/services", servicesfeature.GroupRoutes(servicesHandler))
		groupsRouter.Mount("/{groupID}/stats", groupstatsfeature.Routes(statsHandler))
		pr.Mount("/groups", groupsRouter)

		pr.Mount("/services", servicesfeature.Routes(servicesHandler))

		// Caller account and admin account management
		userinfoHandler := userinfofeature.NewHandler(users, notifications, engine, logger)
		pr.Mount("/me", userinfofeature.MeRoutes(userinfoHandler))
		pr.Mount("/users", userinfofeature.UserRoutes(userinfoHandler))

		// Superadmin operations
		adminHandler := adminfeature.NewHandler(backfill, authorizer, logger)
		pr.Mount("/admin", adminfeature.Routes(adminHandler))
	})

	return r, nil
}
