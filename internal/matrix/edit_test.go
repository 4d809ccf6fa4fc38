package matrix

import "testing"

func TestEditor_ApplyEdit(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"45", "45"},
		{"$1,250.505", "1250.51"},
		{"  12.3 ", "12.3"},
		{"-4", "0"},
		{"abc", "0"},
		{"", "0"},
	}

	store := NewStore()
	ed := NewEditor(store)
	key := NewRateKey("ottawa", testSel)

	for _, tt := range tests {
		got := ed.ApplyEdit(key, 4, tt.raw)
		if !got.Equal(dec(tt.want)) {
			t.Errorf("ApplyEdit(%q) = %s, want %s", tt.raw, got, tt.want)
		}
		if stored := store.Rate(key, 4); !stored.Equal(got) {
			t.Errorf("after ApplyEdit(%q) stored %s, returned %s", tt.raw, stored, got)
		}
	}
}
