package core

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestToPgText(t *testing.T) {
	tests := []struct {
		input string
		want  pgtype.Text
	}{
		{"hello", pgtype.Text{String: "hello", Valid: true}},
		{"  padded  ", pgtype.Text{String: "padded", Valid: true}},
		{"", pgtype.Text{Valid: false}},
		{"   ", pgtype.Text{Valid: false}},
	}

	for _, tt := range tests {
		if got := ToPgText(tt.input); got != tt.want {
			t.Errorf("ToPgText(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestToPgInts(t *testing.T) {
	if got := ToPgInt2(0); got.Valid {
		t.Errorf("ToPgInt2(0) = %+v, want invalid", got)
	}
	if got := ToPgInt2(12); !got.Valid || got.Int16 != 12 {
		t.Errorf("ToPgInt2(12) = %+v", got)
	}
	if got := ToPgInt4(0); got.Valid {
		t.Errorf("ToPgInt4(0) = %+v, want invalid", got)
	}
	if got := ToPgInt4(42); !got.Valid || got.Int32 != 42 {
		t.Errorf("ToPgInt4(42) = %+v", got)
	}
}

func TestToPgUUID(t *testing.T) {
	const id = "550e8400-e29b-41d4-a716-446655440000"

	got := ToPgUUID(id)
	if !got.Valid {
		t.Fatalf("ToPgUUID(%q) invalid", id)
	}
	if s := PgUUIDToString(got); s != id {
		t.Errorf("PgUUIDToString() = %q, want %q", s, id)
	}

	for _, bad := range []string{"", "not-a-uuid"} {
		if got := ToPgUUID(bad); got.Valid {
			t.Errorf("ToPgUUID(%q) = valid, want invalid", bad)
		}
	}
	if s := PgUUIDToString(pgtype.UUID{}); s != "" {
		t.Errorf("PgUUIDToString(invalid) = %q, want empty", s)
	}
}

func TestToPgNumeric(t *testing.T) {
	tests := []struct {
		input   string
		wantInt int64
		wantExp int32
	}{
		{"75.00", 7500, -2},
		{"12.5", 125, -1},
		{"0", 0, 0},
		{"1200", 1200, 0},
	}

	for _, tt := range tests {
		got := ToPgNumeric(decimal.RequireFromString(tt.input))
		if !got.Valid {
			t.Errorf("ToPgNumeric(%s) invalid", tt.input)
			continue
		}
		if got.Int.Int64() != tt.wantInt || got.Exp != tt.wantExp {
			t.Errorf("ToPgNumeric(%s) = %s e%d, want %d e%d", tt.input, got.Int, got.Exp, tt.wantInt, tt.wantExp)
		}
	}
}

func TestFromPgNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input pgtype.Numeric
		want  string
	}{
		{"cents", pgtype.Numeric{Int: big.NewInt(7500), Exp: -2, Valid: true}, "75.00"},
		{"rounds to cents", pgtype.Numeric{Int: big.NewInt(12345), Exp: -3, Valid: true}, "12.35"},
		{"positive exponent", pgtype.Numeric{Int: big.NewInt(12), Exp: 2, Valid: true}, "1200.00"},
		{"null", pgtype.Numeric{Valid: false}, "0.00"},
		{"nan", pgtype.Numeric{NaN: true, Valid: true}, "0.00"},
		{"infinity", pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromPgNumeric(tt.input).StringFixed(2); got != tt.want {
				t.Errorf("FromPgNumeric() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "75.00", "99999.99", "1234.5"} {
		d := decimal.RequireFromString(s)
		if got := FromPgNumeric(ToPgNumeric(d)); !got.Equal(d) {
			t.Errorf("round trip %s = %s", s, got)
		}
	}
}
