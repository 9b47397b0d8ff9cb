package reprice

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/pricing"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sweepInputs() pricing.Inputs {
	return pricing.Inputs{
		Rates: rates.Table{
			Gold: map[string]decimal.Decimal{"22K": dec("6000"), "18K": dec("5000")},
		},
		Charges: charges.Config{
			GlobalDefault: charges.Charge{Type: charges.TypePercentage, Value: dec("10")},
		},
	}
}

func TestPriceProduct_SingleVariant(t *testing.T) {
	p := &catalog.Product{
		ProductCode: "CHAIN-001",
		Name:        "Plain Chain",
		Metal:       catalog.Metal{Type: "gold", Purity: "22K", NetWeight: dec("10")},
	}

	breakdown, priceRange := priceProduct(p, sweepInputs())
	if priceRange != nil {
		t.Fatalf("single-variant product must not get a price range")
	}
	want := pricing.Calculate(p, sweepInputs()).FinalPrice
	if !breakdown.FinalPrice.Equal(want) {
		t.Fatalf("breakdown diverges from calculator: got %s want %s", breakdown.FinalPrice, want)
	}
}

func TestPriceProduct_Configurator(t *testing.T) {
	p := &catalog.Product{
		ProductCode: "RING-CFG-001",
		Name:        "Configurable Ring",
		Configurator: &catalog.Configurator{
			Enabled: true,
			ConfigurableMetals: []catalog.ConfigMetal{
				{Type: "gold", Variants: []catalog.MetalVariant{
					{Purity: "22K", NetWeight: dec("8")},
					{Purity: "18K", NetWeight: dec("6")},
				}},
			},
			DefaultMetalType: "gold",
		},
	}

	breakdown, priceRange := priceProduct(p, sweepInputs())
	if priceRange == nil {
		t.Fatalf("configurator product must get a price range")
	}
	if priceRange.MinPrice.GreaterThan(priceRange.DefaultPrice) || priceRange.DefaultPrice.GreaterThan(priceRange.MaxPrice) {
		t.Fatalf("range out of order: min=%s default=%s max=%s",
			priceRange.MinPrice, priceRange.DefaultPrice, priceRange.MaxPrice)
	}
	// The stored breakdown is the default selection, which the range tracks.
	if !breakdown.FinalPrice.Equal(priceRange.DefaultPrice) {
		t.Fatalf("default breakdown %s does not match range default %s",
			breakdown.FinalPrice, priceRange.DefaultPrice)
	}
}
