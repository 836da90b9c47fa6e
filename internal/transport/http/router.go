package http

import (
	"net/http"

	"github.com/go-bazaar-nosql/internal/application/admin"
	"github.com/go-bazaar-nosql/internal/application/auth"
	"github.com/go-bazaar-nosql/internal/application/cart"
	"github.com/go-bazaar-nosql/internal/application/catalog"
	"github.com/go-bazaar-nosql/internal/application/session"
	"github.com/go-bazaar-nosql/internal/application/user"
	"github.com/go-bazaar-nosql/internal/config"
	"github.com/go-bazaar-nosql/internal/domain"
	"github.com/go-bazaar-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-bazaar-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessionDeps := session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		UserRepo:        deps.UserRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenExpiry,
	}
	if deps.GoogleVerifier != nil {
		sessionDeps.GoogleVerifier = deps.GoogleVerifier
	}
	sessionSvc := session.NewService(sessionDeps)
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		Cache:     deps.OTPCache,
		UserRepo:  deps.UserRepo,
		Mailer:    deps.Mailer,
		SMSSender: deps.SMSSender,
	})
	adminSvc := admin.NewService(admin.ServiceDeps{
		UserRepo:        deps.UserRepo,
		ShopRepo:        deps.ShopRepo,
		ProductRepo:     deps.ProductRepo,
		CartRepo:        deps.CartRepo,
		SessionRepo:     deps.SessionRepo,
		Mailer:          deps.Mailer,
		DefaultPassword: cfg.DefaultOwnerPassword,
	})
	cartSvc := cart.NewService(cart.ServiceDeps{
		CartRepo:    deps.CartRepo,
		ProductRepo: deps.ProductRepo,
		ShopRepo:    deps.ShopRepo,
	})
	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		ProductRepo: deps.ProductRepo,
		ShopRepo:    deps.ShopRepo,
		Images:      deps.S3Store,
	})

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(sessionSvc)
	userH := handler.NewUserHandler(userSvc)
	otpH := handler.NewOTPHandler(authSvc)
	pwResetH := handler.NewPasswordResetHandler(authSvc)
	phoneH := handler.NewPhoneConfirmHandler(authSvc)
	adminH := handler.NewAdminHandler(adminSvc)
	cartH := handler.NewCartHandler(cartSvc)
	productH := handler.NewProductHandler(catalogSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.Get("/test", healthH.Test)
		r.Post("/test", healthH.Test)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/sessions/google", sessionH.LoginWithGoogle)
		r.Post("/sessions/refresh", sessionH.Refresh)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/otp/{action}", otpH.Action)
		r.With(sensitiveRL.Limit).Post("/password-reset/{action}", pwResetH.Action)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/profile", userH.GetProfile)
			r.Put("/profile", userH.UpdateProfile)
			r.Post("/profile/change-password", userH.ChangePassword)
			r.With(sensitiveRL.Limit).Post("/confirm-phone/{action}", phoneH.Action)

			r.Get("/shops/{shopID}/products", productH.ListByShop)
			r.Get("/products/{id}", productH.Get)
			r.Get("/products/{id}/image", productH.ImageURL)

			// Shop owners (ownership enforced in the service) or admins
			r.Post("/shops/{shopID}/products", productH.Create)
			r.Put("/products/{id}", productH.Update)
			r.Delete("/products/{id}", productH.Delete)
			r.Post("/products/{id}/image", productH.UploadImage)

			r.Get("/cart", cartH.View)
			r.Post("/cart/items", cartH.Add)
			r.Delete("/cart/items/{productID}", cartH.RemoveLine)
			r.Post("/cart/items/{productID}/decrement", cartH.Decrement)
			r.Delete("/cart", cartH.Clear)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/admin/users", adminH.ListUsers)
				r.Post("/admin/users", adminH.RegisterUser)
				r.Put("/admin/users/{id}", adminH.UpdateUser)
				r.Get("/admin/shops", adminH.ListShops)
				r.Post("/admin/shops", adminH.CreateShop)
				r.Put("/admin/shops/{id}", adminH.UpdateShop)
				r.Delete("/admin/{type}/{id}", adminH.DeleteEntity)
			})
		})
	})

	return r
}
