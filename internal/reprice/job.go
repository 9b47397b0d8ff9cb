package reprice

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/pricing"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
)

const (
	lockKey     = "reprice:run"
	lockTTL     = 10 * time.Minute
	maxAttempts = 3
)

// Job sweeps every active product and rewrites its stored breakdown (and
// price range) against the current rates and settings. It runs after each
// rate publish and on demand from the reprice command.
type Job struct {
	DB       *pgxpool.Pool
	Products *catalog.Repository
	Rates    *rates.Repository
	Settings *charges.Repository

	// Locker is optional. When set, concurrent runs are collapsed: the loser
	// skips instead of double-sweeping the catalog.
	Locker *redislock.Client

	Log       *logrus.Logger
	BatchSize int
}

type Stats struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

func (j *Job) Run(ctx context.Context) (Stats, error) {
	if j.Locker != nil {
		lock, err := j.Locker.Obtain(ctx, lockKey, lockTTL, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				j.Log.Info("reprice already running, skipping")
				return Stats{}, nil
			}
			return Stats{}, err
		}
		defer func() { _ = lock.Release(context.Background()) }()
	}

	in, err := j.loadInputs(ctx)
	if err != nil {
		return Stats{}, err
	}

	batch := j.BatchSize
	if batch <= 0 {
		batch = 500
	}

	started := time.Now()
	var stats Stats
	after := ""
	for {
		page, err := j.Products.ListActivePage(ctx, after, batch)
		if err != nil {
			return stats, err
		}
		if len(page) == 0 {
			break
		}

		if err := j.repriceBatch(ctx, page, in); err != nil {
			// The batch is atomic: after the retries are exhausted it is
			// skipped whole, and the sweep moves on.
			stats.Failed += len(page)
			j.Log.WithFields(logrus.Fields{
				"after": after,
				"size":  len(page),
			}).WithError(err).Error("reprice batch failed")
		} else {
			stats.Processed += len(page)
		}

		after = page[len(page)-1].ProductCode
		if len(page) < batch {
			break
		}
	}

	j.Log.WithFields(logrus.Fields{
		"processed": stats.Processed,
		"failed":    stats.Failed,
		"elapsed":   time.Since(started).String(),
	}).Info("reprice sweep finished")
	return stats, nil
}

// RecomputeOne rewrites the stored pricing of a single product inside the
// caller's transaction. The approval gate calls this after a change lands so
// an approved edit is never visible with stale numbers. A product that no
// longer exists (delete) is a no-op.
func (j *Job) RecomputeOne(ctx context.Context, tx pgx.Tx, code string) error {
	in, err := j.loadInputs(ctx)
	if err != nil {
		return err
	}

	doc, err := j.Products.Get(ctx, tx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	var p catalog.Product
	if err := json.Unmarshal(doc, &p); err != nil {
		return err
	}

	breakdown, priceRange := priceProduct(&p, in)
	return catalog.UpdatePricing(ctx, tx, code, breakdown, priceRange)
}

// repriceBatch rewrites one batch in a single transaction, retrying the
// whole batch on transient failure.
func (j *Job) repriceBatch(ctx context.Context, page []catalog.Product, in pricing.Inputs) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = db.WithTx(ctx, j.DB, func(tx pgx.Tx) error {
			for i := range page {
				p := &page[i]
				breakdown, priceRange := priceProduct(p, in)
				if err := catalog.UpdatePricing(ctx, tx, p.ProductCode, breakdown, priceRange); err != nil {
					return err
				}
			}
			return nil
		})
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

// priceProduct computes the stored pricing artifacts for one product: the
// default-selection breakdown always, the price range only for configurator
// products.
func priceProduct(p *catalog.Product, in pricing.Inputs) (catalog.PriceBreakdown, *catalog.PriceRange) {
	breakdown := pricing.Calculate(p, in)
	if len(p.Configurator.Normalize()) == 0 {
		return breakdown, nil
	}
	pr := pricing.ComputeRange(p, in)
	return breakdown, &pr
}

func (j *Job) loadInputs(ctx context.Context) (pricing.Inputs, error) {
	snap, err := j.Rates.Current(ctx)
	if err != nil {
		return pricing.Inputs{}, err
	}
	cfg, err := j.Settings.LoadConfig(ctx)
	if err != nil {
		return pricing.Inputs{}, err
	}
	tax, err := j.Settings.LoadTaxSettings(ctx)
	if err != nil {
		return pricing.Inputs{}, err
	}
	return pricing.Inputs{Rates: snap.Table, Tax: tax, Charges: cfg}, nil
}
