package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Shilpe266/dp-jewellers-sub000/internal/catalog"
)

// ComputeRange enumerates the variant space of a configurator product and
// derives {min, max, default} final prices. Products without a usable
// configurator short-circuit to their single stored price, so the range is
// always well-formed.
func ComputeRange(p *catalog.Product, in Inputs) catalog.PriceRange {
	metals := p.Configurator.Normalize()
	if len(metals) == 0 {
		fp := singlePrice(p, in)
		return catalog.PriceRange{MinPrice: fp, MaxPrice: fp, DefaultPrice: fp}
	}

	var min, max decimal.Decimal
	first := true
	track := func(fp decimal.Decimal) {
		if first {
			min, max = fp, fp
			first = false
			return
		}
		if fp.LessThan(min) {
			min = fp
		}
		if fp.GreaterThan(max) {
			max = fp
		}
	}

	for _, m := range metals {
		for _, v := range m.Variants {
			qualities := v.AvailableDiamondQualities
			if len(qualities) == 0 {
				qualities = []string{""}
			}
			for _, q := range qualities {
				for _, size := range extremeSizes(v) {
					fp := CalculateVariant(p, Selection{
						MetalType:      m.Type,
						Purity:         v.Purity,
						DiamondQuality: q,
						Size:           size,
					}, in).FinalPrice
					track(fp)
				}
			}
		}
	}

	// The default price is computed once for the declared default selection.
	// It is tracked too, which pins min <= default <= max even when the
	// default size sits between the weight extremes.
	entry := selectEntry(metals, "", p.Configurator.DefaultMetalType)
	variant := selectVariant(entry, p.Configurator.DefaultPurity)
	def := CalculateVariant(p, Selection{
		MetalType:      entry.Type,
		Purity:         variant.Purity,
		DiamondQuality: variant.DefaultDiamondQuality,
		Size:           variant.DefaultSize,
	}, in).FinalPrice
	track(def)

	return catalog.PriceRange{MinPrice: min, MaxPrice: max, DefaultPrice: def}
}

// extremeSizes returns the two weight-extreme sizes of a variant (one when
// they coincide), or a single empty size when the variant has no size list.
func extremeSizes(v catalog.MetalVariant) []string {
	if len(v.Sizes) == 0 {
		return []string{""}
	}
	minIdx, maxIdx := 0, 0
	for i, s := range v.Sizes {
		if s.NetWeight.LessThan(v.Sizes[minIdx].NetWeight) {
			minIdx = i
		}
		if s.NetWeight.GreaterThan(v.Sizes[maxIdx].NetWeight) {
			maxIdx = i
		}
	}
	if minIdx == maxIdx {
		return []string{v.Sizes[minIdx].Size}
	}
	return []string{v.Sizes[minIdx].Size, v.Sizes[maxIdx].Size}
}

func singlePrice(p *catalog.Product, in Inputs) decimal.Decimal {
	if p.Pricing.Breakdown != nil {
		return p.Pricing.Breakdown.FinalPrice
	}
	return Calculate(p, in).FinalPrice
}
