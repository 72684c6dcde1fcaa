package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orchardworks/fruitstand-backend/api/controllers"
	"github.com/orchardworks/fruitstand-backend/api/middleware"
	cartsvc "github.com/orchardworks/fruitstand-backend/internal/cart"
	"github.com/orchardworks/fruitstand-backend/internal/catalog"
	checkoutsvc "github.com/orchardworks/fruitstand-backend/internal/checkout"
	ordersvc "github.com/orchardworks/fruitstand-backend/internal/orders"
	"github.com/orchardworks/fruitstand-backend/internal/users"
	"github.com/orchardworks/fruitstand-backend/pkg/config"
	"github.com/orchardworks/fruitstand-backend/pkg/db"
	"github.com/orchardworks/fruitstand-backend/pkg/logger"
	pkgredis "github.com/orchardworks/fruitstand-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP pkgredis.Pinger,
	idemStore pkgredis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	userService users.Service,
	cartService cartsvc.Service,
	checkoutService checkoutsvc.Service,
	ordersService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, cfg.Checkout.IdempotencyTTL, logg))

		r.Route("/fruits", func(r chi.Router) {
			r.Post("/", controllers.FruitCreate(catalogService, logg))
			r.Get("/", controllers.FruitList(catalogService, logg))
			r.Get("/{fruitId}", controllers.FruitGet(catalogService, logg))
			r.Put("/{fruitId}", controllers.FruitUpdate(catalogService, logg))
			r.Delete("/{fruitId}", controllers.FruitDelete(catalogService, logg))
			r.Post("/{fruitId}/info", controllers.FruitInfoCreate(catalogService, logg))
			r.Get("/{fruitId}/info", controllers.FruitInfoGet(catalogService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", controllers.UserCreate(userService, logg))
			r.Get("/", controllers.UserList(userService, logg))
			r.Get("/{userId}", controllers.UserGet(userService, logg))
			r.Delete("/{userId}", controllers.UserDelete(userService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CartAdd(cartService, logg))
			r.Post("/associate", controllers.CartAssociate(cartService, logg))
			r.Get("/{userId}", controllers.CartList(cartService, logg))
			r.Put("/{cartId}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/clear/{userId}", controllers.CartClear(cartService, logg))
			r.Delete("/{cartId}", controllers.CartDeleteItem(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/place/{userId}", controllers.OrderPlace(checkoutService, logg))
			r.Get("/history/{userId}", controllers.OrderHistory(ordersService, logg))
			r.Get("/grouped", controllers.OrderListGrouped(ordersService, logg))
			r.Get("/", controllers.OrderListAll(ordersService, logg))
		})
	})

	return r
}
