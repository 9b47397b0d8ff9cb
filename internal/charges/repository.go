package charges

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings documents are stored as named jsonb rows so the shape can evolve
// without schema churn.
const (
	settingChargeConfig = "charge_config"
	settingTaxSettings  = "tax_settings"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// LoadConfig returns the stored charge configuration, or a zero config when
// none has been saved yet (the resolver chain then bottoms out at zero).
func (r *Repository) LoadConfig(ctx context.Context) (Config, error) {
	var cfg Config
	ok, err := r.load(ctx, settingChargeConfig, &cfg)
	if err != nil || !ok {
		return Config{}, err
	}
	return cfg, nil
}

// LoadTaxSettings returns the stored GST settings with platform defaults
// filled in.
func (r *Repository) LoadTaxSettings(ctx context.Context) (TaxSettings, error) {
	var ts TaxSettings
	ok, err := r.load(ctx, settingTaxSettings, &ts)
	if err != nil {
		return TaxSettings{}, err
	}
	if !ok {
		return DefaultTaxSettings(), nil
	}
	return ts.OrDefaults(), nil
}

func (r *Repository) SaveConfig(ctx context.Context, cfg Config) error {
	return r.save(ctx, settingChargeConfig, cfg)
}

func (r *Repository) SaveTaxSettings(ctx context.Context, ts TaxSettings) error {
	return r.save(ctx, settingTaxSettings, ts)
}

// WriteConfig saves the charge configuration inside the caller's transaction
// so the settings write and its audit record commit together.
func WriteConfig(ctx context.Context, tx pgx.Tx, cfg Config) error {
	return writeSetting(ctx, tx, settingChargeConfig, cfg)
}

func WriteTaxSettings(ctx context.Context, tx pgx.Tx, ts TaxSettings) error {
	return writeSetting(ctx, tx, settingTaxSettings, ts)
}

func writeSetting(ctx context.Context, tx pgx.Tx, name string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO settings (name, doc)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET
  doc = EXCLUDED.doc,
  updated_at = NOW()
`
	_, err = tx.Exec(ctx, q, name, b)
	return err
}

func (r *Repository) load(ctx context.Context, name string, dest any) (bool, error) {
	const q = `SELECT doc FROM settings WHERE name = $1`
	var doc []byte
	if err := r.db.QueryRow(ctx, q, name).Scan(&doc); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(doc, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, name string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO settings (name, doc)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET
  doc = EXCLUDED.doc,
  updated_at = NOW()
`
	_, err = r.db.Exec(ctx, q, name, b)
	return err
}
