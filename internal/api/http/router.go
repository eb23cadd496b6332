package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/restaurant-portal/internal/api/http/handlers"
	"github.com/spec-kit/restaurant-portal/internal/auth"
	"github.com/spec-kit/restaurant-portal/internal/domain"
)

// PagePrefix is where guarded page payloads are mounted. Page guard redirects are
// issued relative to it.
const PagePrefix = "/pages"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Pages          *handlers.PagesHandler
	Superadmin     *handlers.SuperadminHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	guard := cfg.AuthMiddleware
	anyRole := auth.For("", domain.RoleRestaurant, domain.RoleStaff, domain.RoleSuperadmin)

	authGroup := app.Group("/auth")
	authGroup.Post("/restaurant/signup", cfg.Auth.Signup)
	authGroup.Post("/restaurant/login", cfg.Auth.Login(domain.RoleRestaurant))
	authGroup.Post("/staff/login", cfg.Auth.Login(domain.RoleStaff))
	authGroup.Post("/superadmin/login", cfg.Auth.Login(domain.RoleSuperadmin))
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/status", guard.API(anyRole), cfg.Auth.Status)

	registerPages(app.Group(PagePrefix), cfg)

	superadmin := app.Group("/superadmin", guard.API(auth.For("", domain.RoleSuperadmin)), auth.RequireRole(domain.RoleSuperadmin))
	superadmin.Get("/restaurants", cfg.Superadmin.ListRestaurants)
	superadmin.Get("/restaurants/:id", cfg.Superadmin.GetRestaurant)
	superadmin.Post("/restaurants/:id/approve", cfg.Superadmin.Approve)
	superadmin.Post("/restaurants/:id/reject", cfg.Superadmin.Reject)
	superadmin.Post("/restaurants/:id/suspend", cfg.Superadmin.Suspend)
	superadmin.Post("/restaurants/:id/reinstate", cfg.Superadmin.Reinstate)

	owner := app.Group("/restaurant", guard.API(auth.For(domain.DestinationDashboard, domain.RoleRestaurant)), auth.RequireRestaurantScope())
	owner.Get("/staff", cfg.Staff.ListStaff)
	owner.Post("/staff", cfg.Staff.CreateStaff)
}

func registerPages(pages fiber.Router, cfg RouteConfig) {
	guard := cfg.AuthMiddleware
	render := cfg.Pages.Render

	pages.Get(auth.LoginPath(domain.RoleRestaurant), cfg.Pages.Login(domain.RoleRestaurant))
	pages.Get(auth.LoginPath(domain.RoleStaff), cfg.Pages.Login(domain.RoleStaff))
	pages.Get(auth.LoginPath(domain.RoleSuperadmin), cfg.Pages.Login(domain.RoleSuperadmin))

	restaurantPages := []domain.Destination{
		domain.DestinationDashboard,
		domain.DestinationVerificationPending,
		domain.DestinationVerificationRejected,
		domain.DestinationAccountSuspended,
	}
	for _, dest := range restaurantPages {
		pages.Get(auth.PagePath(domain.RoleRestaurant, dest), guard.Page(auth.For(dest, domain.RoleRestaurant)), render(string(dest)))
	}

	pages.Get(auth.PagePath(domain.RoleStaff, domain.DestinationDashboard),
		guard.Page(auth.For(domain.DestinationDashboard, domain.RoleStaff)), render(string(domain.DestinationDashboard)))
	pages.Get(auth.PagePath(domain.RoleRestaurant, domain.DestinationAccessDenied),
		guard.Page(auth.For(domain.DestinationAccessDenied, domain.RoleRestaurant, domain.RoleStaff)), render(string(domain.DestinationAccessDenied)))
	pages.Get(handlers.SuperadminHome, guard.Page(auth.For("", domain.RoleSuperadmin)), render("superadmin_dashboard"))
}
