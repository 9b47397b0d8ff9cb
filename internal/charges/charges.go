package charges

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Charge types for making charges. Wastage only supports percentage and
// fixed.
const (
	TypePercentage  = "percentage"
	TypeFlatPerGram = "flat_per_gram"
	TypeFixedAmount = "fixed_amount"
	TypeFixed       = "fixed"
)

type Charge struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// IsSet reports whether a tier actually carries a charge. Empty or zero
// values fall through to the next tier.
func (c Charge) IsSet() bool {
	return !c.Value.IsZero()
}

type CategoryOverride struct {
	JewelryType string          `json:"jewelryType"`
	ChargeType  string          `json:"chargeType"`
	Value       decimal.Decimal `json:"value"`
}

// Config is the stored charge configuration document.
type Config struct {
	GlobalDefault Charge             `json:"globalDefault"`
	GlobalWastage Charge             `json:"globalWastage"`
	Charges       []CategoryOverride `json:"charges,omitempty"`
}

// TaxSettings is the stored GST configuration document.
type TaxSettings struct {
	GST GSTRates `json:"gst"`
}

type GSTRates struct {
	Jewelry       decimal.Decimal `json:"jewelry"`
	MakingCharges decimal.Decimal `json:"makingCharges"`
}

func DefaultTaxSettings() TaxSettings {
	return TaxSettings{GST: GSTRates{
		Jewelry:       decimal.NewFromInt(3),
		MakingCharges: decimal.NewFromInt(5),
	}}
}

// OrDefaults fills unset GST rates with the platform defaults (3% jewellery,
// 5% making).
func (t TaxSettings) OrDefaults() TaxSettings {
	def := DefaultTaxSettings()
	if t.GST.Jewelry.IsZero() {
		t.GST.Jewelry = def.GST.Jewelry
	}
	if t.GST.MakingCharges.IsZero() {
		t.GST.MakingCharges = def.GST.MakingCharges
	}
	return t
}

// resolver is one tier of the override chain. First tier that reports ok
// wins; tiers never see each other.
type resolver func() (Charge, bool)

// ResolveMaking resolves the making charge for a product. Priority:
// product-level override, category override matching the product's category
// (case-insensitive), global default. Per-metal-entry overrides on
// configurator variants are applied by the caller before this chain runs.
// Never errors; absence at every tier yields a zero percentage charge.
func ResolveMaking(productOverride Charge, category string, cfg Config) Charge {
	chain := []resolver{
		func() (Charge, bool) { return normalize(productOverride), productOverride.IsSet() },
		func() (Charge, bool) { return categoryTier(category, cfg) },
		func() (Charge, bool) { return normalize(cfg.GlobalDefault), cfg.GlobalDefault.IsSet() },
	}
	return runChain(chain)
}

// ResolveWastage resolves the wastage charge: product-level override, then
// the global wastage. There is no category tier for wastage.
func ResolveWastage(productOverride Charge, cfg Config) Charge {
	chain := []resolver{
		func() (Charge, bool) { return normalize(productOverride), productOverride.IsSet() },
		func() (Charge, bool) { return normalize(cfg.GlobalWastage), cfg.GlobalWastage.IsSet() },
	}
	return runChain(chain)
}

func runChain(chain []resolver) Charge {
	for _, tier := range chain {
		if c, ok := tier(); ok {
			return c
		}
	}
	return Charge{Type: TypePercentage, Value: decimal.Decimal{}}
}

func categoryTier(category string, cfg Config) (Charge, bool) {
	if category == "" {
		return Charge{}, false
	}
	for _, o := range cfg.Charges {
		if strings.EqualFold(o.JewelryType, category) && !o.Value.IsZero() {
			return normalize(Charge{Type: o.ChargeType, Value: o.Value}), true
		}
	}
	return Charge{}, false
}

func normalize(c Charge) Charge {
	if c.Type == "" {
		c.Type = TypePercentage
	}
	return c
}
