package product

import "testing"

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Handmade Clay Pot", "handmade-clay-pot"},
		{"  spaced   out  ", "spaced-out"},
		{"Persian Rug (2x3m)!", "persian-rug-2x3m"},
		{"already-a-slug", "already-a-slug"},
		{"گلدان سفالی", ""}, // Persian-only titles reduce to empty
		{"گلدان vase", "vase"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := GenerateSlug(tc.in); got != tc.want {
			t.Errorf("GenerateSlug(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
