package pricing

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func goldRingInputs() Inputs {
	return Inputs{
		Rates: rates.Table{
			Gold: map[string]decimal.Decimal{"22K": dec("6000"), "18K": dec("4900")},
		},
		Charges: charges.Config{
			GlobalWastage: charges.Charge{Type: charges.TypePercentage, Value: dec("2")},
		},
	}
}

func TestCalculate_GoldRingScenario(t *testing.T) {
	p := &catalog.Product{
		ProductCode: "RING-001",
		Name:        "Plain Band",
		Category:    "Rings",
		Status:      catalog.StatusActive,
		Metal:       catalog.Metal{Type: "gold", Purity: "22K", NetWeight: dec("10")},
		Pricing: catalog.ProductPricing{
			MakingChargeType:  charges.TypePercentage,
			MakingChargeValue: dec("10"),
		},
	}

	got := Calculate(p, goldRingInputs())

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"metalValue", got.MetalValue, "60000"},
		{"makingChargeAmount", got.MakingChargeAmount, "6000"},
		{"wastageChargeAmount", got.WastageChargeAmount, "1200"},
		{"subtotal", got.Subtotal, "67200"},
		{"jewelryTaxAmount", got.JewelryTaxAmount, "1800"},
		{"labourTaxAmount", got.LabourTaxAmount, "360"},
		{"taxAmount", got.TaxAmount, "2160"},
		{"finalPrice", got.FinalPrice, "69360"},
		{"mrp", got.MRP, "69360"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, c.got)
		}
	}

	if !got.JewelryTaxRate.Equal(dec("3")) || !got.MakingTaxRate.Equal(dec("5")) {
		t.Errorf("expected default GST rates 3/5, got %s/%s", got.JewelryTaxRate, got.MakingTaxRate)
	}
}

func TestCalculate_DiamondBucketFallback(t *testing.T) {
	p := &catalog.Product{
		ProductCode: "PEND-009",
		Metal:       catalog.Metal{Type: "gold", Purity: "18K", NetWeight: dec("2")},
		Diamond: catalog.Diamond{
			HasDiamond:       true,
			TotalCaratWeight: dec("0.5"),
			Clarity:          "VVS1",
			Color:            "G",
		},
	}

	// VVS_GH present: used directly.
	in := goldRingInputs()
	in.Rates.Diamond = map[string]decimal.Decimal{
		"VVS_GH": dec("80000"),
		"SI_IJ":  dec("30000"),
	}
	if got := Calculate(p, in); !got.DiamondValue.Equal(dec("40000")) {
		t.Fatalf("expected diamond value 40000, got %s", got.DiamondValue)
	}

	// VVS_GH absent: falls back to SI_IJ.
	in.Rates.Diamond = map[string]decimal.Decimal{"SI_IJ": dec("30000")}
	if got := Calculate(p, in); !got.DiamondValue.Equal(dec("15000")) {
		t.Fatalf("expected SI_IJ fallback 15000, got %s", got.DiamondValue)
	}

	// No diamond rates at all: fixed constant 25000/ct.
	in.Rates.Diamond = nil
	if got := Calculate(p, in); !got.DiamondValue.Equal(dec("12500")) {
		t.Fatalf("expected constant fallback 12500, got %s", got.DiamondValue)
	}
}

func TestCalculate_MixedStoneVariantsRatedIndependently(t *testing.T) {
	p := &catalog.Product{
		ProductCode: "NECK-114",
		Metal:       catalog.Metal{Type: "gold", Purity: "18K", NetWeight: dec("8")},
		Diamond: catalog.Diamond{
			HasDiamond: true,
			Variants: []catalog.DiamondVariant{
				{Clarity: "VS1", Color: "F", CaratWeight: dec("0.3")},
				{Clarity: "SI1", Color: "J", CaratWeight: dec("0.7")},
			},
		},
	}
	in := goldRingInputs()
	in.Rates.Diamond = map[string]decimal.Decimal{
		"VS_DEF": dec("90000"),
		"SI_IJ":  dec("30000"),
	}

	got := Calculate(p, in)
	// 0.3*90000 + 0.7*30000 = 48000
	if !got.DiamondValue.Equal(dec("48000")) {
		t.Fatalf("expected 48000, got %s", got.DiamondValue)
	}
	if !got.DiamondRatePerCarat.Equal(dec("48000")) {
		t.Fatalf("expected blended rate 48000/ct, got %s", got.DiamondRatePerCarat)
	}
}

func configuratorProduct() *catalog.Product {
	return &catalog.Product{
		ProductCode: "BNGL-201",
		Name:        "Classic Bangle",
		Category:    "Bangles",
		Status:      catalog.StatusActive,
		Diamond: catalog.Diamond{
			HasDiamond:       true,
			TotalCaratWeight: dec("0.25"),
		},
		Pricing: catalog.ProductPricing{
			MakingChargeType:  charges.TypePercentage,
			MakingChargeValue: dec("9"),
		},
		Configurator: &catalog.Configurator{
			Enabled:          true,
			DefaultMetalType: "gold",
			DefaultPurity:    "18K",
			FixedMetals: []catalog.FixedMetal{
				{Type: "silver", Purity: "925", NetWeight: dec("1.5")},
			},
			ConfigurableMetals: []catalog.ConfigMetal{
				{
					Type:          "gold",
					DefaultPurity: "18K",
					Variants: []catalog.MetalVariant{
						{
							Purity:                    "18K",
							NetWeight:                 dec("6"),
							AvailableDiamondQualities: []string{"VVS_GH", "SI_IJ"},
							DefaultDiamondQuality:     "SI_IJ",
							Sizes: []catalog.SizeOption{
								{Size: "2.4", NetWeight: dec("6")},
								{Size: "2.6", NetWeight: dec("6.8")},
								{Size: "2.8", NetWeight: dec("7.4")},
							},
							DefaultSize: "2.6",
						},
						{
							Purity:    "22K",
							NetWeight: dec("6.2"),
							Pricing: &catalog.VariantPricing{
								MakingChargeType:  charges.TypeFlatPerGram,
								MakingChargeValue: dec("400"),
							},
						},
					},
				},
			},
		},
	}
}

func configuratorInputs() Inputs {
	return Inputs{
		Rates: rates.Table{
			Gold:   map[string]decimal.Decimal{"22K": dec("6000"), "18K": dec("4900")},
			Silver: map[string]decimal.Decimal{"925": dec("90")},
			Diamond: map[string]decimal.Decimal{
				"VVS_GH": dec("80000"),
				"SI_IJ":  dec("30000"),
			},
		},
		Tax: charges.TaxSettings{GST: charges.GSTRates{Jewelry: dec("3"), MakingCharges: dec("5")}},
		Charges: charges.Config{
			GlobalDefault: charges.Charge{Type: charges.TypePercentage, Value: dec("12")},
			GlobalWastage: charges.Charge{Type: charges.TypePercentage, Value: dec("2")},
			Charges: []charges.CategoryOverride{
				{JewelryType: "Bangles", ChargeType: charges.TypePercentage, Value: dec("11")},
			},
		},
	}
}

// For configurator products the quality chain is selected quality, then the
// variant default, then the fallback bucket. A top-level clarity/color pair
// only maps to a bucket on non-configurator products.
func TestCalculateVariant_TopLevelClarityColorIgnored(t *testing.T) {
	p := configuratorProduct()
	p.Diamond.Clarity = "VVS1"
	p.Diamond.Color = "G"
	v := &p.Configurator.ConfigurableMetals[0].Variants[0]
	v.AvailableDiamondQualities = nil
	v.DefaultDiamondQuality = ""
	in := configuratorInputs()

	got := CalculateVariant(p, Selection{MetalType: "gold", Purity: "18K"}, in)
	// 0.25ct at the SI_IJ fallback 30000, not at the mapped VVS_GH 80000.
	if !got.DiamondValue.Equal(dec("7500")) {
		t.Fatalf("expected fallback bucket value 7500, got %s", got.DiamondValue)
	}

	// A selected quality still wins.
	got = CalculateVariant(p, Selection{MetalType: "gold", Purity: "18K", DiamondQuality: "VVS_GH"}, in)
	if !got.DiamondValue.Equal(dec("20000")) {
		t.Fatalf("expected selected quality value 20000, got %s", got.DiamondValue)
	}
}

func TestCalculateVariant_MetalEntryOverrideBeatsEveryTier(t *testing.T) {
	p := configuratorProduct()
	in := configuratorInputs()

	// The 22K variant has a flat_per_gram 400 override; product (9%),
	// category (11%) and global (12%) must all lose.
	got := CalculateVariant(p, Selection{MetalType: "gold", Purity: "22K"}, in)
	if got.MakingChargeType != charges.TypeFlatPerGram || !got.MakingChargeValue.Equal(dec("400")) {
		t.Fatalf("expected metal-entry override, got %s %s", got.MakingChargeType, got.MakingChargeValue)
	}
	// 6.2g configurable + 1.5g fixed = 7.7g at 400/g.
	if !got.MakingChargeAmount.Equal(dec("3080")) {
		t.Fatalf("expected making 3080, got %s", got.MakingChargeAmount)
	}

	// The 18K variant has no entry-level override: product override (9%)
	// wins over category and global.
	got = CalculateVariant(p, Selection{MetalType: "gold", Purity: "18K"}, in)
	if !got.MakingChargeValue.Equal(dec("9")) {
		t.Fatalf("expected product override 9%%, got %s", got.MakingChargeValue)
	}

	// Without the product override the category tier takes over.
	p.Pricing.MakingChargeValue = decimal.Decimal{}
	got = CalculateVariant(p, Selection{MetalType: "gold", Purity: "18K"}, in)
	if !got.MakingChargeValue.Equal(dec("11")) {
		t.Fatalf("expected category override 11%%, got %s", got.MakingChargeValue)
	}
}

func TestCalculateVariant_SizeWeightAndFixedMetals(t *testing.T) {
	p := configuratorProduct()
	in := configuratorInputs()

	got := CalculateVariant(p, Selection{MetalType: "gold", Purity: "18K", Size: "2.8"}, in)

	// 7.4g at 4900 plus fixed 1.5g silver at 90.
	wantMetal := dec("7.4").Mul(dec("4900")).Add(dec("1.5").Mul(dec("90")))
	if !got.MetalValue.Equal(wantMetal.Round(0)) {
		t.Fatalf("expected metal value %s, got %s", wantMetal.Round(0), got.MetalValue)
	}
	if !got.TotalNetWeight.Equal(dec("8.9")) {
		t.Fatalf("expected total weight 8.9, got %s", got.TotalNetWeight)
	}
	if len(got.MetalBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %d", len(got.MetalBreakdown))
	}
}

func TestCalculateVariant_Deterministic(t *testing.T) {
	p := configuratorProduct()
	in := configuratorInputs()
	sel := Selection{MetalType: "gold", Purity: "18K", DiamondQuality: "VVS_GH", Size: "2.6"}

	a := CalculateVariant(p, sel, in)
	b := CalculateVariant(p, sel, in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated calls diverged:\n%+v\nvs\n%+v", a, b)
	}
}

// Component fields are rounded independently while finalPrice is rounded
// from unrounded sums, so a displayed breakdown may be off from the total by
// a couple of units, never more.
func TestCalculateVariant_RoundingDiscrepancyBounded(t *testing.T) {
	p := configuratorProduct()
	p.Pricing.Discount = dec("333.33")
	in := configuratorInputs()
	in.Rates.Gold["18K"] = dec("4937.37")

	got := CalculateVariant(p, Selection{MetalType: "gold", Purity: "18K", Size: "2.6"}, in)

	resummed := got.Subtotal.Sub(got.Discount).Add(got.TaxAmount)
	diff := resummed.Sub(got.FinalPrice).Abs()
	if diff.GreaterThan(dec("2")) {
		t.Fatalf("breakdown re-sum drifted %s from finalPrice", diff)
	}
}

func TestCalculate_UnknownRatesAreSilentZero(t *testing.T) {
	p := &catalog.Product{
		ProductCode: "EARR-404",
		Metal:       catalog.Metal{Type: "gold", Purity: "14K", NetWeight: dec("3")},
	}

	got := Calculate(p, Inputs{})
	if !got.MetalValue.IsZero() {
		t.Fatalf("expected zero metal value for unknown purity, got %s", got.MetalValue)
	}
	if !got.FinalPrice.IsZero() {
		t.Fatalf("expected zero final price, got %s", got.FinalPrice)
	}
}
