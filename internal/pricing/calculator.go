package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/charges"
	"github.com/Shilpe266/dp-jewellers-sub000/internal/rates"
)

// Selection pins down one purchasable combination of a configurator product.
// Empty fields fall back to the product's declared defaults.
type Selection struct {
	MetalType      string `json:"metalType,omitempty"`
	Purity         string `json:"purity,omitempty"`
	DiamondQuality string `json:"diamondQuality,omitempty"`
	Size           string `json:"size,omitempty"`
}

// Inputs is the full rate/tax/charge context for one computation. Callers
// pass an explicit snapshot; the calculator holds no ambient state.
type Inputs struct {
	Rates   rates.Table
	Tax     charges.TaxSettings
	Charges charges.Config
}

var hundred = decimal.NewFromInt(100)

// Calculate prices a product with its default selection.
func Calculate(p *catalog.Product, in Inputs) catalog.PriceBreakdown {
	return CalculateVariant(p, Selection{}, in)
}

// CalculateVariant produces the complete price breakdown for one selection.
// It is pure: same inputs always produce the same output, and degenerate
// inputs (unknown rates, empty variants) resolve to zero components rather
// than errors.
func CalculateVariant(p *catalog.Product, sel Selection, in Inputs) catalog.PriceBreakdown {
	tax := in.Tax.OrDefaults()

	var (
		metalValue    decimal.Decimal
		totalWeight   decimal.Decimal
		entries       []catalog.MetalBreakdownEntry
		activeVariant *catalog.MetalVariant
	)

	metals := p.Configurator.Normalize()
	if len(metals) > 0 {
		entry := selectEntry(metals, sel.MetalType, p.Configurator.DefaultMetalType)
		variant := selectVariant(entry, sel.Purity)
		activeVariant = &variant

		weight := variant.NetWeight
		if sel.Size != "" {
			for _, s := range variant.Sizes {
				if s.Size == sel.Size {
					weight = s.NetWeight
					break
				}
			}
		}

		rate := in.Rates.MetalRate(entry.Type, variant.Purity)
		value := weight.Mul(rate)
		entries = append(entries, catalog.MetalBreakdownEntry{
			MetalType:   entry.Type,
			Purity:      variant.Purity,
			NetWeight:   weight,
			RatePerGram: rate,
			Value:       value.Round(0),
		})
		metalValue = metalValue.Add(value)
		totalWeight = totalWeight.Add(weight)

		// Fixed metals are part of the piece no matter what is selected.
		for _, fm := range p.Configurator.FixedMetals {
			rate := in.Rates.MetalRate(fm.Type, fm.Purity)
			value := fm.NetWeight.Mul(rate)
			entries = append(entries, catalog.MetalBreakdownEntry{
				MetalType:   fm.Type,
				Purity:      fm.Purity,
				NetWeight:   fm.NetWeight,
				RatePerGram: rate,
				Value:       value.Round(0),
			})
			metalValue = metalValue.Add(value)
			totalWeight = totalWeight.Add(fm.NetWeight)
		}
	} else {
		purity := p.Metal.Purity
		if strings.EqualFold(p.Metal.Type, "silver") {
			purity = p.Metal.SilverType
		}
		rate := in.Rates.MetalRate(p.Metal.Type, purity)
		value := p.Metal.NetWeight.Mul(rate)
		entries = append(entries, catalog.MetalBreakdownEntry{
			MetalType:   p.Metal.Type,
			Purity:      purity,
			NetWeight:   p.Metal.NetWeight,
			RatePerGram: rate,
			Value:       value.Round(0),
		})
		metalValue = value
		totalWeight = p.Metal.NetWeight
	}

	diamondValue, diamondRate := diamondValuation(p, sel, activeVariant, in.Rates)

	making, wastage := resolveCharges(p, activeVariant, in.Charges)
	makingAmount := chargeAmount(making, metalValue, totalWeight)
	wastageAmount := chargeAmount(wastage, metalValue, totalWeight)

	gemstone := p.Pricing.GemstoneValue
	stoneSetting := p.Pricing.StoneSettingCharges
	design := p.Pricing.DesignCharges
	discount := p.Pricing.Discount

	jewelryRate, makingRate := resolveTaxRates(p, activeVariant, tax)

	// Taxes are computed from the unrounded bases; only the returned fields
	// are rounded for display.
	jewelryBase := metalValue.Add(diamondValue).Add(gemstone)
	labourBase := makingAmount.Add(wastageAmount).Add(stoneSetting).Add(design)
	jewelryTax := jewelryBase.Mul(jewelryRate).Div(hundred)
	labourTax := labourBase.Mul(makingRate).Div(hundred)
	taxAmount := jewelryTax.Add(labourTax)

	subtotal := jewelryBase.Add(labourBase)
	finalPrice := subtotal.Sub(discount).Add(taxAmount).Round(0)
	mrp := subtotal.Add(taxAmount).Round(0)

	return catalog.PriceBreakdown{
		MetalBreakdown: entries,
		MetalValue:     metalValue.Round(0),
		TotalNetWeight: totalWeight,

		DiamondValue:        diamondValue.Round(0),
		DiamondRatePerCarat: diamondRate,
		GemstoneValue:       gemstone.Round(0),

		MakingChargeType:    making.Type,
		MakingChargeValue:   making.Value,
		MakingChargeAmount:  makingAmount.Round(0),
		WastageChargeType:   wastage.Type,
		WastageChargeValue:  wastage.Value,
		WastageChargeAmount: wastageAmount.Round(0),
		StoneSettingCharges: stoneSetting.Round(0),
		DesignCharges:       design.Round(0),

		Subtotal: subtotal.Round(0),
		Discount: discount.Round(0),

		JewelryTaxRate:   jewelryRate,
		MakingTaxRate:    makingRate,
		JewelryTaxAmount: jewelryTax.Round(0),
		LabourTaxAmount:  labourTax.Round(0),
		TaxAmount:        taxAmount.Round(0),

		FinalPrice:   finalPrice,
		MRP:          mrp,
		SellingPrice: finalPrice,
	}
}

func selectEntry(metals []catalog.ConfigMetal, selType, defaultType string) catalog.ConfigMetal {
	if selType != "" {
		for _, m := range metals {
			if strings.EqualFold(m.Type, selType) {
				return m
			}
		}
	}
	if defaultType != "" {
		for _, m := range metals {
			if strings.EqualFold(m.Type, defaultType) {
				return m
			}
		}
	}
	return metals[0]
}

func selectVariant(entry catalog.ConfigMetal, selPurity string) catalog.MetalVariant {
	if selPurity != "" {
		for _, v := range entry.Variants {
			if strings.EqualFold(v.Purity, selPurity) {
				return v
			}
		}
	}
	if entry.DefaultPurity != "" {
		for _, v := range entry.Variants {
			if strings.EqualFold(v.Purity, entry.DefaultPurity) {
				return v
			}
		}
	}
	return entry.Variants[0]
}

// diamondValuation returns the total diamond value and the effective
// per-carat rate. Mixed-stone products rate each variant by its own
// clarity/color; the returned rate is then the blended value per carat.
func diamondValuation(p *catalog.Product, sel Selection, activeVariant *catalog.MetalVariant, tbl rates.Table) (decimal.Decimal, decimal.Decimal) {
	d := p.Diamond
	if !d.HasDiamond {
		return decimal.Decimal{}, decimal.Decimal{}
	}

	if len(d.Variants) > 0 {
		var value, carat decimal.Decimal
		for _, dv := range d.Variants {
			rate := tbl.DiamondRate(qualityBucket(dv.Clarity, dv.Color))
			value = value.Add(dv.CaratWeight.Mul(rate))
			carat = carat.Add(dv.CaratWeight)
		}
		if carat.IsPositive() {
			return value, value.DivRound(carat, 2)
		}
		return decimal.Decimal{}, decimal.Decimal{}
	}

	if !d.TotalCaratWeight.IsPositive() {
		return decimal.Decimal{}, decimal.Decimal{}
	}

	bucket := sel.DiamondQuality
	if bucket == "" && activeVariant != nil {
		bucket = activeVariant.DefaultDiamondQuality
	}
	// Clarity/color mapping only exists for non-configurator products. A
	// configurator product with no selected or default quality falls straight
	// through to the fallback bucket.
	if bucket == "" && activeVariant == nil && (d.Clarity != "" || d.Color != "") {
		bucket = qualityBucket(d.Clarity, d.Color)
	}
	if bucket == "" {
		bucket = rates.FallbackDiamondBucket
	}
	rate := tbl.DiamondRate(bucket)
	return d.TotalCaratWeight.Mul(rate), rate
}

// qualityBucket coarsens a clarity/color pair into a rate-table key.
func qualityBucket(clarity, color string) string {
	return clarityBucket(clarity) + "_" + colorBucket(color)
}

func clarityBucket(clarity string) string {
	switch strings.ToUpper(strings.TrimSpace(clarity)) {
	case "FL", "IF":
		return "IF"
	case "VVS1", "VVS2":
		return "VVS"
	case "VS1", "VS2":
		return "VS"
	default:
		return "SI"
	}
}

func colorBucket(color string) string {
	switch strings.ToUpper(strings.TrimSpace(color)) {
	case "D", "E", "F":
		return "DEF"
	case "G", "H":
		return "GH"
	default:
		return "IJ"
	}
}

// resolveCharges runs the override chain, letting a metal-entry pricing
// block beat every other tier for configurator paths.
func resolveCharges(p *catalog.Product, activeVariant *catalog.MetalVariant, cfg charges.Config) (charges.Charge, charges.Charge) {
	making := charges.ResolveMaking(charges.Charge{
		Type:  p.Pricing.MakingChargeType,
		Value: p.Pricing.MakingChargeValue,
	}, p.Category, cfg)
	wastage := charges.ResolveWastage(charges.Charge{
		Type:  p.Pricing.WastageChargeType,
		Value: p.Pricing.WastageChargeValue,
	}, cfg)

	if activeVariant != nil && activeVariant.Pricing != nil {
		vp := activeVariant.Pricing
		if !vp.MakingChargeValue.IsZero() {
			making = charges.Charge{Type: vp.MakingChargeType, Value: vp.MakingChargeValue}
			if making.Type == "" {
				making.Type = charges.TypePercentage
			}
		}
		if !vp.WastageChargeValue.IsZero() {
			wastage = charges.Charge{Type: vp.WastageChargeType, Value: vp.WastageChargeValue}
			if wastage.Type == "" {
				wastage.Type = charges.TypePercentage
			}
		}
	}
	return making, wastage
}

func chargeAmount(c charges.Charge, metalValue, totalWeight decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case charges.TypeFlatPerGram:
		return totalWeight.Mul(c.Value)
	case charges.TypeFixedAmount, charges.TypeFixed:
		return c.Value
	default:
		// percentage applies to total metal value
		return metalValue.Mul(c.Value).Div(hundred)
	}
}

// resolveTaxRates: metal-entry override beats product override beats global.
func resolveTaxRates(p *catalog.Product, activeVariant *catalog.MetalVariant, tax charges.TaxSettings) (decimal.Decimal, decimal.Decimal) {
	jewelry := tax.GST.Jewelry
	making := tax.GST.MakingCharges
	if p.Tax != nil {
		if p.Tax.JewelryGst != nil {
			jewelry = *p.Tax.JewelryGst
		}
		if p.Tax.MakingGst != nil {
			making = *p.Tax.MakingGst
		}
	}
	if activeVariant != nil && activeVariant.Pricing != nil {
		if activeVariant.Pricing.JewelryGst != nil {
			jewelry = *activeVariant.Pricing.JewelryGst
		}
		if activeVariant.Pricing.MakingGst != nil {
			making = *activeVariant.Pricing.MakingGst
		}
	}
	return jewelry, making
}
