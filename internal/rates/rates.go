package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Table is one published snapshot of commodity rates. Snapshots are
// immutable: a publish archives the previous snapshot verbatim and replaces
// the current one, it never edits in place.
type Table struct {
	// Gold maps purity ("24K", "22K", "18K", ...) to rate per gram.
	Gold map[string]decimal.Decimal `json:"gold,omitempty"`
	// Silver maps silver type ("925", "999", ...) to rate per gram.
	Silver map[string]decimal.Decimal `json:"silver,omitempty"`
	// Platinum has a single flat per-gram rate.
	Platinum PlatinumRate `json:"platinum"`
	// Diamond maps a quality bucket ("{clarity}_{color}", e.g. "VVS_GH") to
	// rate per carat.
	Diamond map[string]decimal.Decimal `json:"diamond,omitempty"`
}

type PlatinumRate struct {
	PerGram decimal.Decimal `json:"perGram"`
}

// FallbackDiamondBucket is tried when the requested bucket has no rate.
const FallbackDiamondBucket = "SI_IJ"

// fallbackDiamondRate is the last-resort per-carat rate when the table has
// no usable diamond entry at all.
var fallbackDiamondRate = decimal.NewFromInt(25000)

// MetalRate returns the per-gram rate for a metal type and purity. Unknown
// combinations resolve to zero; pricing never fails on incomplete rate data.
func (t Table) MetalRate(metalType, purity string) decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(metalType)) {
	case "gold":
		return t.Gold[purity]
	case "silver":
		return t.Silver[purity]
	case "platinum":
		return t.Platinum.PerGram
	}
	return decimal.Decimal{}
}

// DiamondRate returns the per-carat rate for a quality bucket, falling back
// to the SI_IJ bucket and finally to a fixed constant.
func (t Table) DiamondRate(bucket string) decimal.Decimal {
	if r, ok := t.Diamond[bucket]; ok {
		return r
	}
	if r, ok := t.Diamond[FallbackDiamondBucket]; ok {
		return r
	}
	return fallbackDiamondRate
}

// IsEmpty reports whether the snapshot carries no rates at all. Publishing
// an empty snapshot is rejected as a precondition failure.
func (t Table) IsEmpty() bool {
	return len(t.Gold) == 0 && len(t.Silver) == 0 && len(t.Diamond) == 0 && t.Platinum.PerGram.IsZero()
}
