package catalog

import "github.com/shopspring/decimal"

// Configurator is the stored configurator block. Three historical schema
// shapes coexist in the catalog:
//
//   v1: metalOptions        (flat list of per-purity options)
//   v2: configurableMetal   (a single metal entry with variants)
//   v3: configurableMetals  (list of metal entries with variants)
//
// Normalize maps all three onto the canonical []ConfigMetal; nothing
// downstream ever branches on the source shape.
type Configurator struct {
	Enabled bool `json:"enabled"`

	MetalOptions       []MetalOption `json:"metalOptions,omitempty"`
	ConfigurableMetal  *ConfigMetal  `json:"configurableMetal,omitempty"`
	ConfigurableMetals []ConfigMetal `json:"configurableMetals,omitempty"`

	// FixedMetals are always part of the piece regardless of selection.
	FixedMetals []FixedMetal `json:"fixedMetals,omitempty"`

	DefaultMetalType string `json:"defaultMetalType,omitempty"`
	DefaultPurity    string `json:"defaultPurity,omitempty"`
}

// ConfigMetal is the canonical configurable-metal entry (the v3 shape).
type ConfigMetal struct {
	Type          string         `json:"type"`
	Variants      []MetalVariant `json:"variants"`
	DefaultPurity string         `json:"defaultPurity,omitempty"`
}

type MetalVariant struct {
	Purity    string          `json:"purity"`
	NetWeight decimal.Decimal `json:"netWeight"`
	Sizes     []SizeOption    `json:"sizes,omitempty"`

	AvailableDiamondQualities []string `json:"availableDiamondQualities,omitempty"`
	DefaultDiamondQuality     string   `json:"defaultDiamondQuality,omitempty"`
	DefaultSize               string   `json:"defaultSize,omitempty"`

	// Pricing overrides at the metal-entry level beat every other charge
	// tier.
	Pricing *VariantPricing `json:"pricing,omitempty"`
}

type SizeOption struct {
	Size      string          `json:"size"`
	NetWeight decimal.Decimal `json:"netWeight"`
}

type VariantPricing struct {
	MakingChargeType   string           `json:"makingChargeType,omitempty"`
	MakingChargeValue  decimal.Decimal  `json:"makingChargeValue"`
	WastageChargeType  string           `json:"wastageChargeType,omitempty"`
	WastageChargeValue decimal.Decimal  `json:"wastageChargeValue"`
	JewelryGst         *decimal.Decimal `json:"jewelryGst,omitempty"`
	MakingGst          *decimal.Decimal `json:"makingGst,omitempty"`
}

type FixedMetal struct {
	Type      string          `json:"type"`
	Purity    string          `json:"purity,omitempty"`
	NetWeight decimal.Decimal `json:"netWeight"`
}

// MetalOption is the legacy v1 shape: one row per (metal, purity).
type MetalOption struct {
	MetalType string          `json:"metalType"`
	Purity    string          `json:"purity"`
	NetWeight decimal.Decimal `json:"netWeight"`
	Sizes     []SizeOption    `json:"sizes,omitempty"`

	DiamondQualities      []string `json:"diamondQualities,omitempty"`
	DefaultDiamondQuality string   `json:"defaultDiamondQuality,omitempty"`
	DefaultSize           string   `json:"defaultSize,omitempty"`

	Pricing *VariantPricing `json:"pricing,omitempty"`
}

// Normalize maps the stored configurator onto the canonical shape. It is
// total: absent, disabled or malformed input yields nil ("no configurator"),
// never an error. Normalizing an already-canonical payload returns it
// unchanged apart from filled defaults, so re-normalizing is a no-op.
func (c *Configurator) Normalize() []ConfigMetal {
	if c == nil || !c.Enabled {
		return nil
	}

	var metals []ConfigMetal
	switch {
	case len(c.ConfigurableMetals) > 0:
		metals = append(metals, c.ConfigurableMetals...)
	case c.ConfigurableMetal != nil:
		metals = append(metals, *c.ConfigurableMetal)
	case len(c.MetalOptions) > 0:
		metals = groupMetalOptions(c.MetalOptions)
	}

	out := metals[:0:0]
	for _, m := range metals {
		if m.Type == "" || len(m.Variants) == 0 {
			continue
		}
		out = append(out, fillDefaults(m))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// groupMetalOptions folds the flat v1 rows into per-type entries, preserving
// first-seen order.
func groupMetalOptions(opts []MetalOption) []ConfigMetal {
	var order []string
	byType := map[string]*ConfigMetal{}

	for _, o := range opts {
		if o.MetalType == "" {
			continue
		}
		m, ok := byType[o.MetalType]
		if !ok {
			m = &ConfigMetal{Type: o.MetalType}
			byType[o.MetalType] = m
			order = append(order, o.MetalType)
		}
		m.Variants = append(m.Variants, MetalVariant{
			Purity:                    o.Purity,
			NetWeight:                 o.NetWeight,
			Sizes:                     o.Sizes,
			AvailableDiamondQualities: o.DiamondQualities,
			DefaultDiamondQuality:     o.DefaultDiamondQuality,
			DefaultSize:               o.DefaultSize,
			Pricing:                   o.Pricing,
		})
	}

	out := make([]ConfigMetal, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

func fillDefaults(m ConfigMetal) ConfigMetal {
	if m.DefaultPurity == "" && len(m.Variants) > 0 {
		m.DefaultPurity = m.Variants[0].Purity
	}
	// Copy before filling so normalization never mutates the stored document.
	vs := make([]MetalVariant, len(m.Variants))
	copy(vs, m.Variants)
	for i, v := range vs {
		if v.DefaultDiamondQuality == "" && len(v.AvailableDiamondQualities) > 0 {
			v.DefaultDiamondQuality = v.AvailableDiamondQualities[0]
		}
		if v.DefaultSize == "" && len(v.Sizes) > 0 {
			v.DefaultSize = v.Sizes[0].Size
		}
		vs[i] = v
	}
	m.Variants = vs
	return m
}
