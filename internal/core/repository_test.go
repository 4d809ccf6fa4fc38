package core

import (
	"testing"

	db "github.com/JonMunkholm/skidrates/internal/database"
	"github.com/JonMunkholm/skidrates/internal/matrix"
	"github.com/shopspring/decimal"
)

func TestSliceFromRows_NormalizesCities(t *testing.T) {
	rows := []db.SkidRate{
		{PickupCity: " toronto", Service: ltl.Service, ServiceType: ltl.ServiceType, SkidCount: 1, Rate: ToPgNumeric(decimal.RequireFromString("12.50"))},
		{PickupCity: "Toronto", Service: ltl.Service, ServiceType: ltl.ServiceType, SkidCount: 2, Rate: ToPgNumeric(decimal.RequireFromString("20"))},
		{PickupCity: "MONTREAL", Service: ltl.Service, ServiceType: ltl.ServiceType, SkidCount: 13, Rate: ToPgNumeric(decimal.RequireFromString("5"))},
	}

	m := sliceFromRows(ltl, rows)

	if len(m) != 1 {
		t.Fatalf("sliceFromRows() = %d keys, want 1: %v", len(m), m.Keys())
	}
	row, ok := m[matrix.NewRateKey("TORONTO", ltl)]
	if !ok {
		t.Fatalf("TORONTO row missing, keys = %v", m.Keys())
	}
	if got := row[1]; !got.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("1 SKID = %s, want 12.50", got)
	}
	if got := row[2]; !got.Equal(decimal.RequireFromString("20")) {
		t.Errorf("2 SKIDS = %s, want 20", got)
	}

	// The loaded rows read back through the codec's lookups.
	sess := matrix.NewSession(ltl, "CAD")
	sess.Load(m)
	if got := matrix.FormatRate(sess.Rate("Toronto", 1)); got != "$12.50" {
		t.Errorf("Rate(Toronto, 1) = %s, want $12.50", got)
	}
}
