package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product statuses that count as live on the storefront. isActive is always
// derived from status, never set directly.
const (
	StatusActive     = "active"
	StatusComingSoon = "coming_soon"
	StatusDraft      = "draft"
	StatusArchived   = "archived"
)

type Product struct {
	ProductCode string `json:"productCode" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`
	IsActive    bool   `json:"isActive"`

	Metal        Metal         `json:"metal"`
	Diamond      Diamond       `json:"diamond"`
	Configurator *Configurator `json:"configurator,omitempty"`

	Pricing    ProductPricing `json:"pricing"`
	PriceRange *PriceRange    `json:"priceRange,omitempty"`
	Tax        *TaxOverrides  `json:"tax,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// DeriveActive recomputes isActive from status.
func (p *Product) DeriveActive() {
	p.IsActive = p.Status == StatusActive || p.Status == StatusComingSoon
}

// Metal describes the single-variant composition. Purity is used for gold,
// SilverType for silver; platinum needs neither.
type Metal struct {
	Type       string          `json:"type"`
	Purity     string          `json:"purity,omitempty"`
	SilverType string          `json:"silverType,omitempty"`
	NetWeight  decimal.Decimal `json:"netWeight"`
}

type Diamond struct {
	HasDiamond       bool            `json:"hasDiamond"`
	TotalCaratWeight decimal.Decimal `json:"totalCaratWeight"`
	Clarity          string          `json:"clarity,omitempty"`
	Color            string          `json:"color,omitempty"`

	// Variants lists mixed stones; each is rated independently by its own
	// clarity/color and summed.
	Variants []DiamondVariant `json:"variants,omitempty"`
}

type DiamondVariant struct {
	Clarity     string          `json:"clarity"`
	Color       string          `json:"color"`
	CaratWeight decimal.Decimal `json:"caratWeight"`
}

// ProductPricing carries the per-product charge overrides together with the
// last computed breakdown. The breakdown is never hand-edited; the reprice
// job and the approval apply path recompute it.
type ProductPricing struct {
	MakingChargeType   string          `json:"makingChargeType,omitempty"`
	MakingChargeValue  decimal.Decimal `json:"makingChargeValue"`
	WastageChargeType  string          `json:"wastageChargeType,omitempty"`
	WastageChargeValue decimal.Decimal `json:"wastageChargeValue"`

	GemstoneValue       decimal.Decimal `json:"gemstoneValue"`
	StoneSettingCharges decimal.Decimal `json:"stoneSettingCharges"`
	DesignCharges       decimal.Decimal `json:"designCharges"`
	Discount            decimal.Decimal `json:"discount"`

	Breakdown *PriceBreakdown `json:"breakdown,omitempty"`
}

// TaxOverrides are per-product GST overrides. Pointers distinguish "not set"
// from an explicit zero rate.
type TaxOverrides struct {
	JewelryGst *decimal.Decimal `json:"jewelryGst,omitempty"`
	MakingGst  *decimal.Decimal `json:"makingGst,omitempty"`
}

// PriceBreakdown is the complete computed price for one variant selection.
// Component fields are rounded to the nearest unit for display; finalPrice
// is rounded from the unrounded sums, so components are not guaranteed to
// re-sum exactly to finalPrice.
type PriceBreakdown struct {
	MetalBreakdown []MetalBreakdownEntry `json:"metalBreakdown"`
	MetalValue     decimal.Decimal       `json:"metalValue"`
	TotalNetWeight decimal.Decimal       `json:"totalNetWeight"`

	DiamondValue        decimal.Decimal `json:"diamondValue"`
	DiamondRatePerCarat decimal.Decimal `json:"diamondRatePerCarat"`
	GemstoneValue       decimal.Decimal `json:"gemstoneValue"`

	MakingChargeType    string          `json:"makingChargeType"`
	MakingChargeValue   decimal.Decimal `json:"makingChargeValue"`
	MakingChargeAmount  decimal.Decimal `json:"makingChargeAmount"`
	WastageChargeType   string          `json:"wastageChargeType"`
	WastageChargeValue  decimal.Decimal `json:"wastageChargeValue"`
	WastageChargeAmount decimal.Decimal `json:"wastageChargeAmount"`
	StoneSettingCharges decimal.Decimal `json:"stoneSettingCharges"`
	DesignCharges       decimal.Decimal `json:"designCharges"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`

	JewelryTaxRate   decimal.Decimal `json:"jewelryTaxRate"`
	MakingTaxRate    decimal.Decimal `json:"makingTaxRate"`
	JewelryTaxAmount decimal.Decimal `json:"jewelryTaxAmount"`
	LabourTaxAmount  decimal.Decimal `json:"labourTaxAmount"`
	TaxAmount        decimal.Decimal `json:"taxAmount"`

	FinalPrice   decimal.Decimal `json:"finalPrice"`
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

type MetalBreakdownEntry struct {
	MetalType   string          `json:"metalType"`
	Purity      string          `json:"purity,omitempty"`
	NetWeight   decimal.Decimal `json:"netWeight"`
	RatePerGram decimal.Decimal `json:"ratePerGram"`
	Value       decimal.Decimal `json:"value"`
}

// PriceRange summarises the variant space of a configurator product.
type PriceRange struct {
	MinPrice     decimal.Decimal `json:"minPrice"`
	MaxPrice     decimal.Decimal `json:"maxPrice"`
	DefaultPrice decimal.Decimal `json:"defaultPrice"`
}
