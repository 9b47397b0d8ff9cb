package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/actor"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/api"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/approval"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/pricing"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/reprice"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/config"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/redisx"
)

type Dependencies struct {
	Cfg   config.Config
	DB    *pgxpool.Pool
	Redis *redisx.Client
	Log   *logrus.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	actorsRepo := actor.NewRepository(deps.DB)
	productsRepo := catalog.NewRepository(deps.DB)
	ratesRepo := rates.NewRepository(deps.DB)
	settingsRepo := charges.NewRepository(deps.DB)
	approvalsRepo := approval.NewRepository(deps.DB)

	job := &reprice.Job{
		DB:        deps.DB,
		Products:  productsRepo,
		Rates:     ratesRepo,
		Settings:  settingsRepo,
		Log:       deps.Log,
		BatchSize: deps.Cfg.RepriceBatchSize,
	}
	if deps.Redis != nil {
		job.Locker = deps.Redis.Locker
	}

	gate := &approval.Gate{
		DB: deps.DB,
		Stores: map[string]approval.EntityStore{
			catalog.EntityTypeProduct: productsRepo,
		},
		OnApplied: func(ctx context.Context, tx pgx.Tx, entityType, entityID string) error {
			if entityType != catalog.EntityTypeProduct {
				return nil
			}
			return job.RecomputeOne(ctx, tx, entityID)
		},
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	productHandlers := catalog.Handlers{
		DB:       deps.DB,
		Products: productsRepo,
		Gate:     gate,
		Validate: validate,
		Log:      deps.Log,
	}
	approvalHandlers := approval.Handlers{Approvals: approvalsRepo, Gate: gate}
	pricingHandlers := pricing.Handlers{
		Products: productsRepo,
		Rates:    ratesRepo,
		Settings: settingsRepo,
	}
	ratesHandlers := rates.Handlers{
		DB:    deps.DB,
		Rates: ratesRepo,
		OnPublished: func(ctx context.Context) {
			if _, err := job.Run(ctx); err != nil {
				deps.Log.WithError(err).Error("reprice after publish failed")
			}
		},
	}
	chargesHandlers := charges.Handlers{DB: deps.DB, Settings: settingsRepo}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AdminAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Actor-ID"},
			MaxAgeSeconds:  600,
		}))

		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg, actorsRepo))

			// Catalog
			r.Get("/products", productHandlers.List)
			r.Post("/products", productHandlers.Create)
			r.Get("/products/{code}", productHandlers.Get)
			r.Patch("/products/{code}", productHandlers.Update)
			r.Delete("/products/{code}", productHandlers.Delete)
			r.Post("/products/{code}/archive", productHandlers.Archive)
			r.Post("/products/{code}/restore", productHandlers.Restore)
			r.Get("/products/{code}/events", productHandlers.Events)

			// Pricing previews
			r.Post("/pricing/calculate", pricingHandlers.Preview)
			r.Post("/pricing/products/{code}/calculate", pricingHandlers.CalculateProduct)
			r.Get("/pricing/products/{code}/range", pricingHandlers.Range)

			// Rates and settings are readable by every admin
			r.Get("/rates", ratesHandlers.GetCurrent)
			r.Get("/settings/charges", chargesHandlers.GetCharges)
			r.Get("/settings/tax", chargesHandlers.GetTax)

			// Review and publish surfaces are super-admin only
			r.Group(func(r chi.Router) {
				r.Use(api.RequireSuperAdmin)

				r.Get("/approvals", approvalHandlers.List)
				r.Get("/approvals/{id}", approvalHandlers.Get)
				r.Post("/approvals/{id}/review", approvalHandlers.Review)

				r.Put("/rates", ratesHandlers.Publish)
				r.Put("/settings/charges", chargesHandlers.PutCharges)
				r.Put("/settings/tax", chargesHandlers.PutTax)
			})
		})
	})

	return r
}
