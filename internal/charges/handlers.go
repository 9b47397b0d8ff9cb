package charges

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/api"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/audit"
	"github.com/Shilpe266/dp-jewellers-sub000/pkg/db"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Settings *Repository
}

func (h Handlers) GetCharges(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Settings.LoadConfig(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

func (h Handlers) PutCharges(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing actor identity")
		return
	}

	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if msg := validateConfig(cfg); msg != "" {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, msg)
		return
	}

	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := WriteConfig(r.Context(), tx, cfg); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, a.ID, "settings", nil, "CHARGE_CONFIG_UPDATED", map[string]any{
			"categoryOverrides": len(cfg.Charges),
		})
		return nil
	})
	if err != nil {
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(cfg)
}

func (h Handlers) GetTax(w http.ResponseWriter, r *http.Request) {
	ts, err := h.Settings.LoadTaxSettings(r.Context())
	if err != nil {
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ts)
}

func (h Handlers) PutTax(w http.ResponseWriter, r *http.Request) {
	a := api.ActorFromContext(r.Context())
	if a == nil {
		api.WriteError(w, http.StatusUnauthorized, api.CodeUnauthorized, "missing actor identity")
		return
	}

	var ts TaxSettings
	if err := json.NewDecoder(r.Body).Decode(&ts); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "invalid json")
		return
	}
	if ts.GST.Jewelry.IsNegative() || ts.GST.MakingCharges.IsNegative() {
		api.WriteError(w, http.StatusBadRequest, api.CodeValidationFailed, "GST rates must not be negative")
		return
	}

	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := WriteTaxSettings(r.Context(), tx, ts); err != nil {
			return err
		}
		_ = audit.Insert(r.Context(), tx, a.ID, "settings", nil, "TAX_SETTINGS_UPDATED", nil)
		return nil
	})
	if err != nil {
		api.WriteInternal(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ts.OrDefaults())
}

func validChargeType(t string) bool {
	switch t {
	case "", TypePercentage, TypeFlatPerGram, TypeFixedAmount, TypeFixed:
		return true
	}
	return false
}

// Wastage only supports percentage and fixed.
func validWastageType(t string) bool {
	switch t {
	case "", TypePercentage, TypeFixed:
		return true
	}
	return false
}

func validateConfig(cfg Config) string {
	if !validChargeType(cfg.GlobalDefault.Type) {
		return "invalid globalDefault charge type"
	}
	if !validWastageType(cfg.GlobalWastage.Type) {
		return "invalid globalWastage charge type"
	}
	if cfg.GlobalDefault.Value.IsNegative() || cfg.GlobalWastage.Value.IsNegative() {
		return "charge values must not be negative"
	}
	for _, o := range cfg.Charges {
		if o.JewelryType == "" {
			return "category override missing jewelryType"
		}
		if !validChargeType(o.ChargeType) {
			return "invalid charge type for category " + o.JewelryType
		}
		if o.Value.IsNegative() {
			return "negative charge value for category " + o.JewelryType
		}
	}
	return ""
}
