package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ridelinehq/ridegear-backend/api/controllers"
	"github.com/ridelinehq/ridegear-backend/api/middleware"
	"github.com/ridelinehq/ridegear-backend/internal/analytics"
	"github.com/ridelinehq/ridegear-backend/internal/auth"
	"github.com/ridelinehq/ridegear-backend/internal/cart"
	"github.com/ridelinehq/ridegear-backend/internal/catalog"
	checkoutsvc "github.com/ridelinehq/ridegear-backend/internal/checkout"
	"github.com/ridelinehq/ridegear-backend/internal/content"
	"github.com/ridelinehq/ridegear-backend/internal/coupons"
	"github.com/ridelinehq/ridegear-backend/internal/importer"
	"github.com/ridelinehq/ridegear-backend/internal/notifications"
	"github.com/ridelinehq/ridegear-backend/internal/orders"
	"github.com/ridelinehq/ridegear-backend/internal/reviews"
	"github.com/ridelinehq/ridegear-backend/internal/users"
	"github.com/ridelinehq/ridegear-backend/pkg/auth/session"
	"github.com/ridelinehq/ridegear-backend/pkg/config"
	"github.com/ridelinehq/ridegear-backend/pkg/logger"
	"github.com/ridelinehq/ridegear-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Catalog       catalog.Service
	Cart          cart.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Reviews       reviews.Service
	Content       content.Service
	Users         users.Service
	Coupons       coupons.Service
	Notifications notifications.Service
	Analytics     analytics.Service
	Importer      importer.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisClient *redis.Client,
	sessionVerifier session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisClient,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Storefront surface, no credentials required.
		r.Get("/products", controllers.ListProducts(svcs.Catalog, logg))
		r.Get("/products/{slug}", controllers.GetProduct(svcs.Catalog, logg))
		r.Get("/products/{slug}/reviews", controllers.ReviewsList(svcs.Reviews, logg))
		r.Get("/categories", controllers.ListCategories(svcs.Catalog, logg))
		r.Get("/content/blocks", controllers.ContentBlocks(svcs.Content, logg))
		r.Get("/content/settings", controllers.ContentSettings(svcs.Content, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, redisClient, logg),
				middleware.Idempotency(redisClient, logg),
			).Post("/register", controllers.Register(svcs.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(svcs.Auth, logg))
			r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
			r.With(middleware.Auth(cfg.JWT, sessionVerifier, logg)).Post("/logout", controllers.Logout(svcs.Auth, logg))
		})

		// Customer surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionVerifier, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(svcs.Cart, logg))
				r.Delete("/", controllers.CartClear(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Patch("/items/{itemID}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(svcs.Cart, logg))
				r.Post("/coupon", controllers.CartApplyCoupon(svcs.Cart, logg))
				r.Delete("/coupon", controllers.CartRemoveCoupon(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.CheckoutSubmit(svcs.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.OrderGet(svcs.Orders, logg))
				r.Post("/{orderID}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			})

			r.Post("/products/{slug}/reviews", controllers.ReviewCreate(svcs.Reviews, logg))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.ProfileGet(svcs.Users, logg))
				r.Patch("/", controllers.ProfileUpdate(svcs.Users, logg))
			})
		})

		// Dashboard surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionVerifier, logg))
			r.Use(middleware.RequireRole("admin", logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductsListAll(svcs.Catalog, logg))
				r.Post("/", controllers.AdminProductCreate(svcs.Catalog, logg))
				r.Get("/low-stock", controllers.AdminLowStock(svcs.Catalog, logg, cfg.Checkout.LowStockThreshold))
				r.Patch("/{productID}", controllers.AdminProductUpdate(svcs.Catalog, logg))
				r.Delete("/{productID}", controllers.AdminProductDelete(svcs.Catalog, logg))
				r.Post("/{productID}/stock", controllers.AdminProductAdjustStock(svcs.Catalog, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", controllers.AdminCategoryCreate(svcs.Catalog, logg))
				r.Patch("/{categoryID}", controllers.AdminCategoryUpdate(svcs.Catalog, logg))
				r.Delete("/{categoryID}", controllers.AdminCategoryDelete(svcs.Catalog, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrdersList(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.AdminOrderGet(svcs.Orders, logg))
				r.Post("/{orderID}/status", controllers.AdminOrderUpdateStatus(svcs.Orders, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminCouponsList(svcs.Coupons, logg))
				r.Post("/", controllers.AdminCouponCreate(svcs.Coupons, logg))
				r.Patch("/{couponID}", controllers.AdminCouponUpdate(svcs.Coupons, logg))
				r.Delete("/{couponID}", controllers.AdminCouponDelete(svcs.Coupons, logg))
			})

			r.Route("/content/blocks", func(r chi.Router) {
				r.Get("/", controllers.AdminContentBlocks(svcs.Content, logg))
				r.Post("/", controllers.AdminContentBlockCreate(svcs.Content, logg))
				r.Patch("/{blockID}", controllers.AdminContentBlockUpdate(svcs.Content, logg))
				r.Delete("/{blockID}", controllers.AdminContentBlockDelete(svcs.Content, logg))
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.AdminSettingsList(svcs.Content, logg))
				r.Get("/{key}", controllers.AdminSettingGet(svcs.Content, logg))
				r.Put("/{key}", controllers.AdminSettingPut(svcs.Content, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUsersList(svcs.Users, logg))
				r.Get("/{userID}", controllers.AdminUserGet(svcs.Users, logg))
				r.Post("/{userID}/active", controllers.AdminUserSetActive(svcs.Users, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.AdminNotificationsList(svcs.Notifications, logg))
				r.Get("/unread-count", controllers.AdminNotificationsUnreadCount(svcs.Notifications, logg))
				r.Post("/{notificationID}/read", controllers.AdminNotificationMarkRead(svcs.Notifications, logg))
				r.Post("/read-all", controllers.AdminNotificationsMarkAllRead(svcs.Notifications, logg))
			})

			r.Post("/import/products", controllers.AdminImportProducts(svcs.Importer, logg))
			r.Get("/analytics/dashboard", controllers.AdminDashboard(svcs.Analytics, logg, cfg.Checkout.LowStockThreshold))
		})
	})

	return r
}
