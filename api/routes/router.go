package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coverline/coverline-backend/api/controllers"
	"github.com/coverline/coverline-backend/api/middleware"
	authsvc "github.com/coverline/coverline-backend/internal/auth"
	distributorsvc "github.com/coverline/coverline-backend/internal/distributors"
	mediasvc "github.com/coverline/coverline-backend/internal/media"
	productsvc "github.com/coverline/coverline-backend/internal/products"
	salesvc "github.com/coverline/coverline-backend/internal/sales"
	warrantysvc "github.com/coverline/coverline-backend/internal/warranty"
	"github.com/coverline/coverline-backend/pkg/auth/session"
	"github.com/coverline/coverline-backend/pkg/config"
	"github.com/coverline/coverline-backend/pkg/db"
	"github.com/coverline/coverline-backend/pkg/logger"
	"github.com/coverline/coverline-backend/pkg/metrics"
	"github.com/coverline/coverline-backend/pkg/redis"
	"github.com/coverline/coverline-backend/pkg/storage/gcs"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	GCS          gcs.Pinger
	Sessions     session.AccessSessionChecker
	Metrics      *metrics.HTTPMetrics
	PromGatherer prometheus.Gatherer

	Auth         authsvc.Service
	Warranty     warrantysvc.Service
	Products     productsvc.Service
	Distributors distributorsvc.Service
	Sales        salesvc.Service
	Media        mediasvc.Service
}

// NewRouter assembles the full HTTP surface: public health and warranty
// lookup, the auth endpoints, and the policy-gated portal API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	policyTable := middleware.DefaultPolicyTable()

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	resetPolicy := middleware.NewAuthRateLimitPolicy(
		"reset",
		cfg.AuthRateLimit.ResetWindow,
		cfg.AuthRateLimit.ResetIPLimit,
		cfg.AuthRateLimit.ResetEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis, deps.GCS))
	})

	if deps.PromGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.PromGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/warranty-check", controllers.PublicWarrantyCheck(deps.Warranty, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(resetPolicy, deps.Redis, logg)).Post("/password-reset/request", controllers.PasswordResetRequest(deps.Auth, logg))
		r.Post("/password-reset/confirm", controllers.PasswordResetConfirm(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.With(middleware.Authorize(policyTable, middleware.ResourceProducts, middleware.ActionRead, logg)).
				Get("/", controllers.ListProducts(deps.Products, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceProducts, middleware.ActionRead, logg)).
				Get("/{productId}", controllers.GetProduct(deps.Products, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceProducts, middleware.ActionCreate, logg)).
				Post("/", controllers.CreateProduct(deps.Products, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceProducts, middleware.ActionUpdate, logg)).
				Patch("/{productId}", controllers.UpdateProduct(deps.Products, logg))
		})

		r.Route("/distributors", func(r chi.Router) {
			r.With(middleware.Authorize(policyTable, middleware.ResourceDistributors, middleware.ActionRead, logg)).
				Get("/", controllers.ListDistributors(deps.Distributors, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceDistributors, middleware.ActionRead, logg)).
				Get("/{distributorId}", controllers.GetDistributor(deps.Distributors, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceDistributors, middleware.ActionCreate, logg)).
				Post("/", controllers.CreateDistributor(deps.Distributors, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceDistributors, middleware.ActionCreate, logg)).
				Post("/{distributorId}/resend-invite", controllers.ResendDistributorInvite(deps.Distributors, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceDistributors, middleware.ActionUpdate, logg)).
				Patch("/{distributorId}", controllers.UpdateDistributor(deps.Distributors, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.With(middleware.Authorize(policyTable, middleware.ResourceSales, middleware.ActionRead, logg)).
				Get("/", controllers.ListSales(deps.Sales, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceSales, middleware.ActionCreate, logg)).
				Post("/", controllers.CreateSale(deps.Sales, logg))
		})

		r.Route("/media", func(r chi.Router) {
			r.With(middleware.Authorize(policyTable, middleware.ResourceMedia, middleware.ActionCreate, logg)).
				Post("/presign", controllers.MediaPresign(deps.Media, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceMedia, middleware.ActionCreate, logg)).
				Post("/{mediaId}/confirm", controllers.MediaConfirm(deps.Media, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceMedia, middleware.ActionRead, logg)).
				Get("/{mediaId}/download", controllers.MediaDownload(deps.Media, logg))
			r.With(middleware.Authorize(policyTable, middleware.ResourceMedia, middleware.ActionDelete, logg)).
				Delete("/{mediaId}", controllers.MediaDelete(deps.Media, logg))
		})
	})

	return r
}
