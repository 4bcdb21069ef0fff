package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adepa-commerce/storefront-backend/api/controllers"
	"github.com/adepa-commerce/storefront-backend/api/middleware"
	authsvc "github.com/adepa-commerce/storefront-backend/internal/auth"
	"github.com/adepa-commerce/storefront-backend/internal/cart"
	checkoutsvc "github.com/adepa-commerce/storefront-backend/internal/checkout"
	"github.com/adepa-commerce/storefront-backend/internal/orders"
	"github.com/adepa-commerce/storefront-backend/internal/payments"
	"github.com/adepa-commerce/storefront-backend/internal/products"
	"github.com/adepa-commerce/storefront-backend/internal/wishlist"
	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/db"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
	"github.com/adepa-commerce/storefront-backend/pkg/redis"
)

// Deps collects everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redis.Pinger
	Metrics  http.Handler
	Auth     authsvc.Service
	Products products.Service
	Cart     cart.Service
	Checkout checkoutsvc.Service
	Orders   orders.Service
	Payments payments.Service
	Wishlist wishlist.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Post("/logout", controllers.AuthLogout(deps.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Products, logg))
	})

	// Checkout entry is evaluated for anonymous shoppers too; the sequencer
	// answers with a sign-in redirect instead of a 401.
	r.With(middleware.OptionalAuth(cfg.JWT, logg)).
		Post("/api/v1/checkout/enter", controllers.CheckoutEnter(deps.Checkout, logg))

	// The shopping surface is customer-only. Admin tokens are turned away
	// here, not just by the checkout sequencer.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RejectAdmin(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Put("/shipping-address", controllers.CartSaveShippingAddress(deps.Cart, logg))
			r.Put("/payment-method", controllers.CartSavePaymentMethod(deps.Cart, logg))
			r.Delete("/items", controllers.CartClear(deps.Cart, logg))
			r.Delete("/", controllers.CartReset(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/verify-payment", controllers.OrderVerifyPayment(deps.Payments, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(deps.Wishlist, logg))
			r.Post("/{productId}", controllers.WishlistAdd(deps.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(deps.Wishlist, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminProductCreate(deps.Products, logg))
			r.Put("/{productId}", controllers.AdminProductUpdate(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDeactivate(deps.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/mark-paid", controllers.AdminOrderMarkPaid(deps.Orders, logg))
			r.Post("/{orderId}/mark-delivered", controllers.AdminOrderMarkDelivered(deps.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderSetStatus(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.AdminOrderCancel(deps.Orders, logg))
			r.Get("/{orderId}/audits", controllers.AdminOrderAudits(deps.Orders, logg))
		})
	})

	return r
}
