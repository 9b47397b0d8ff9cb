package rates

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMetalRate_UnknownResolvesToZero(t *testing.T) {
	tbl := Table{
		Gold: map[string]decimal.Decimal{"22K": decimal.NewFromInt(6000)},
	}

	if got := tbl.MetalRate("gold", "22K"); !got.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("expected 6000, got %s", got)
	}
	if got := tbl.MetalRate("gold", "14K"); !got.IsZero() {
		t.Fatalf("expected zero for unknown purity, got %s", got)
	}
	if got := tbl.MetalRate("titanium", "22K"); !got.IsZero() {
		t.Fatalf("expected zero for unknown metal, got %s", got)
	}
}

func TestDiamondRate_FallbackChain(t *testing.T) {
	tbl := Table{
		Diamond: map[string]decimal.Decimal{
			"SI_IJ": decimal.NewFromInt(20000),
		},
	}

	// Missing bucket falls back to SI_IJ.
	if got := tbl.DiamondRate("VVS_GH"); !got.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected SI_IJ fallback 20000, got %s", got)
	}

	// No diamond rates at all falls back to the fixed constant.
	empty := Table{}
	if got := empty.DiamondRate("VVS_GH"); !got.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("expected constant fallback 25000, got %s", got)
	}
}

func TestIsEmpty(t *testing.T) {
	if !(Table{}).IsEmpty() {
		t.Fatalf("zero table should be empty")
	}
	tbl := Table{Platinum: PlatinumRate{PerGram: decimal.NewFromInt(3000)}}
	if tbl.IsEmpty() {
		t.Fatalf("platinum-only table is not empty")
	}
}
