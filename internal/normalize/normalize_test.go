package normalize

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Björk", "Bjork"},
		{"Motörhead", "Motorhead"},
		{"Beyoncé", "Beyonce"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Abbey Road", "abbey road"},
		{"ABBEY  ROAD", "abbey road"},
		{"Sgt. Pepper's Lonely Hearts Club Band", "sgt peppers lonely hearts club band"},
		{"Björk: Début", "bjork debut"},
		{"  trim  me  ", "trim me"},
		{"AC/DC", "acdc"},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyEquivalence(t *testing.T) {
	// Matching relies on tag variants reducing to the same key.
	pairs := [][2]string{
		{"The Beatles", "the beatles"},
		{"Help!", "help"},
		{"Vol. 2", "vol 2"},
	}
	for _, p := range pairs {
		if Key(p[0]) != Key(p[1]) {
			t.Errorf("Key(%q) != Key(%q): %q vs %q", p[0], p[1], Key(p[0]), Key(p[1]))
		}
	}
}

func TestSortName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Beatles", "Beatles, The"},
		{"A Tribe Called Quest", "Tribe Called Quest, A"},
		{"An Horse", "Horse, An"},
		{"Queen", "Queen"},
		{"The", "The"}, // bare article stays put
		{"Theatre of Tragedy", "Theatre of Tragedy"}, // prefix, not article
		{"the beatles", "beatles, the"},
	}
	for _, tt := range tests {
		if got := SortName(tt.in); got != tt.want {
			t.Errorf("SortName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
