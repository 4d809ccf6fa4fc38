package matrix

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

const wantHeader = "PICKUP CITY,1 SKID,2 SKIDS,3 SKIDS,4 SKIDS,5 SKIDS,6 SKIDS,7 SKIDS,8 SKIDS,9 SKIDS,10 SKIDS,11 SKIDS,12 SKIDS"

func zeroRow(city string) string {
	return city + strings.Repeat(",$0.00", MaxSkids)
}

// ----------------------------------------------------------------------------
// Encode Tests
// ----------------------------------------------------------------------------

func TestHeader(t *testing.T) {
	if got := Header(); got != wantHeader {
		t.Errorf("Header() =\n%q\nwant\n%q", got, wantHeader)
	}
}

func TestEncode_Scenario(t *testing.T) {
	s := NewStore()
	s.SetRate(NewRateKey("Toronto", testSel), 3, dec("75.00"))

	got := Encode(s, testSel, []string{"Toronto", "Montreal"})

	want := strings.Join([]string{
		wantHeader,
		"TORONTO,$0.00,$0.00,$75.00,$0.00,$0.00,$0.00,$0.00,$0.00,$0.00,$0.00,$0.00,$0.00",
		zeroRow("MONTREAL"),
	}, "\n")
	if got != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}

func TestEncode_OnlyActiveSlice(t *testing.T) {
	s := NewStore()
	s.SetRate(NewRateKey("Toronto", Selector{Service: "FTL", ServiceType: "Standard"}), 1, dec("500"))

	got := Encode(s, testSel, []string{"Toronto"})
	want := wantHeader + "\n" + zeroRow("TORONTO")
	if got != want {
		t.Errorf("Encode() leaked another slice:\n%s", got)
	}
}

func TestEncode_NoCities(t *testing.T) {
	if got := Encode(NewStore(), testSel, nil); got != wantHeader {
		t.Errorf("Encode() = %q, want header only", got)
	}
}

func TestTemplate(t *testing.T) {
	got := Template([]string{"Toronto", "ottawa"})
	want := wantHeader + "\n" + zeroRow("TORONTO") + "\n" + zeroRow("OTTAWA")
	if got != want {
		t.Errorf("Template() =\n%s\nwant\n%s", got, want)
	}
}

// ----------------------------------------------------------------------------
// Decode Tests
// ----------------------------------------------------------------------------

func TestDecode_HeaderRejection(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "wrong first field", text: "CITY,1 SKID\nTORONTO,$1.00"},
		{name: "lower case marker", text: "pickup city,1 SKID\nTORONTO,$1.00"},
		{name: "marker in second field", text: "CITY,PICKUP CITY\nTORONTO,$1.00"},
		{name: "empty text", text: ""},
		{name: "blank lines only", text: "\n  \n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.text, testSel, []string{"Toronto"})
			if !errors.Is(err, ErrInvalidHeader) {
				t.Fatalf("Decode() error = %v, want ErrInvalidHeader", err)
			}
			if len(result.Rows) != 0 {
				t.Errorf("Decode() returned %d rows on fatal error", len(result.Rows))
			}
		})
	}
}

func TestDecode_HeaderMarkerSubstring(t *testing.T) {
	text := "Rates - PICKUP CITY (CAD),1 SKID\nToronto,$5"
	result, err := Decode(text, testSel, []string{"Toronto"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("Rows = %d, want 1", len(result.Rows))
	}
}

func TestDecode_UnknownCitySkipped(t *testing.T) {
	text := wantHeader + "\nATLANTIS,$1.00,$2.00\nTORONTO,$3.00"

	result, err := Decode(text, testSel, []string{"Toronto", "Montreal"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if len(result.Rows) != 1 || result.Rows[0].Key.PickupCity != "TORONTO" {
		t.Fatalf("Rows = %+v, want only TORONTO", result.Rows)
	}
	for _, row := range result.Rows {
		if row.Key.PickupCity == "ATLANTIS" {
			t.Error("unknown city produced a row")
		}
	}
}

func TestDecode_MissingAndMalformedCells(t *testing.T) {
	text := wantHeader + "\n toronto ,$10.00,abc,-4,$1,200.00"

	result, err := Decode(text, testSel, []string{"Toronto"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("Rows = %d, want 1", len(result.Rows))
	}

	row := result.Rows[0]
	if row.Key != NewRateKey("Toronto", testSel) {
		t.Errorf("Key = %+v", row.Key)
	}
	// "$1,200.00" is split by the comma into "$1" and "200.00".
	want := []string{"10.00", "0.00", "0.00", "1.00", "200.00"}
	for i := 0; i < MaxSkids; i++ {
		expected := "0.00"
		if i < len(want) {
			expected = want[i]
		}
		if got := row.Rates[i].StringFixed(2); got != expected {
			t.Errorf("Rates[%d] = %s, want %s", i, got, expected)
		}
	}
}

func TestDecode_BlankLinesCRLFAndBOM(t *testing.T) {
	text := "\uFEFF\r\n\r\n" + wantHeader + "\r\n\r\nTORONTO,$1.00,$2.00\r\n   \r\nMONTREAL,$3.00\r\n"

	result, err := Decode(text, testSel, []string{"Toronto", "Montreal"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2", len(result.Rows))
	}
	if got := result.Rows[0].Rates[1].StringFixed(2); got != "2.00" {
		t.Errorf("TORONTO 2 skids = %s, want 2.00", got)
	}
	if got := result.Rows[1].Rates[0].StringFixed(2); got != "3.00" {
		t.Errorf("MONTREAL 1 skid = %s, want 3.00", got)
	}
	if result.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", result.Skipped)
	}
}

func TestDecode_HeaderOnly(t *testing.T) {
	result, err := Decode(wantHeader+"\n", testSel, []string{"Toronto"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(result.Rows) != 0 || result.Skipped != 0 {
		t.Errorf("Decode() = %+v, want nothing", result)
	}
}

func TestDecodeResult_KeysDeduplicated(t *testing.T) {
	text := wantHeader + "\nTORONTO,$1\nMONTREAL,$2\ntoronto,$3"

	result, err := Decode(text, testSel, []string{"Toronto", "Montreal"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := []RateKey{NewRateKey("Toronto", testSel), NewRateKey("Montreal", testSel)}
	if diff := cmp.Diff(want, result.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if got := result.Rows[2].Line; got != 4 {
		t.Errorf("Line = %d, want 4", got)
	}
}

// ----------------------------------------------------------------------------
// Round Trip
// ----------------------------------------------------------------------------

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cities := []string{"Toronto", "Montreal", "Ottawa", "Quebec City", "Halifax"}
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 25; iter++ {
		src := NewStore()
		for _, city := range cities {
			if rng.Intn(4) == 0 {
				continue // leave some cities unset
			}
			key := NewRateKey(city, testSel)
			for _, skid := range Skids {
				if rng.Intn(3) == 0 {
					continue
				}
				cents := rng.Int63n(1_000_000)
				src.SetRate(key, skid, decimal.New(cents, -2))
			}
		}

		text := Encode(src, testSel, cities)
		result, err := Decode(text, testSel, cities)
		if err != nil {
			t.Fatalf("iteration %d: Decode() error = %v", iter, err)
		}

		dst := NewStore()
		for _, row := range result.Rows {
			dst.ReplaceRow(row.Key, row.Rates)
		}

		for _, city := range cities {
			key := NewRateKey(city, testSel)
			for _, skid := range Skids {
				want, got := src.Rate(key, skid), dst.Rate(key, skid)
				if !want.Equal(got) {
					t.Fatalf("iteration %d: %s/%d = %s, want %s", iter, key.PickupCity, skid, got, want)
				}
			}
		}

		if again := Encode(dst, testSel, cities); again != text {
			t.Fatalf("iteration %d: re-encoded text differs", iter)
		}
	}
}
