package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/minhngocdo/herbamart-storefront/api/controllers"
	"github.com/minhngocdo/herbamart-storefront/api/middleware"
	"github.com/minhngocdo/herbamart-storefront/internal/auth"
	"github.com/minhngocdo/herbamart-storefront/internal/cart"
	"github.com/minhngocdo/herbamart-storefront/internal/catalog"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"github.com/minhngocdo/herbamart-storefront/pkg/metrics"
	pkgredis "github.com/minhngocdo/herbamart-storefront/pkg/redis"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Params bundles everything the router mounts.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *pkgredis.Client
	CartStore   *cart.Store
	AuthService auth.Service
	Catalog     *catalog.Client
	GateMetrics *metrics.GateMetrics
}

// New assembles the full middleware chain and route table. The gate runs after
// the ambient middleware so every decision is logged and recoverable, but
// before any handler so no route sees an unchecked request.
func New(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(p.Logger))
	r.Use(middleware.RequestID(p.Logger))
	r.Use(middleware.Logging(p.Logger))
	r.Use(middleware.CORS())

	gate := middleware.NewGate(p.Config.Gate, p.Logger, p.GateMetrics)
	r.Use(gate.Handler())

	healthController := controllers.NewHealthController(p.Logger,
		controllers.Dependency{Name: "redis", Ping: p.Redis.Ping},
		controllers.Dependency{Name: "catalog", Ping: p.Catalog.Ping},
	)
	authController := controllers.NewAuthController(p.AuthService, p.Config, p.Logger)
	cartController := controllers.NewCartController(p.CartStore, p.Logger)
	catalogController := controllers.NewCatalogController(p.Catalog, p.Logger)

	r.Get("/health/live", healthController.Live)
	r.Get("/health/ready", healthController.Ready)
	r.Handle("/metrics", promhttp.Handler())

	loginPolicy := middleware.NewLoginRateLimitPolicy(
		p.Config.AuthRateLimit.LoginWindow,
		p.Config.AuthRateLimit.LoginIPLimit,
		p.Config.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/v1/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(loginPolicy, p.Redis, p.Logger)).
				Post("/login", authController.Login)
			r.Post("/logout", authController.Logout)
		})

		r.Get("/profile", authController.Profile)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartController.Get)
			r.Delete("/", cartController.Clear)
			r.Post("/items", cartController.AddItem)
			r.Patch("/items/{productID}", cartController.UpdateQuantity)
			r.Delete("/items/{productID}", cartController.RemoveItem)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogController.List)
			r.Get("/{productID}", catalogController.Get)
		})
	})

	return r
}
