package jma

import (
	"testing"

	"github.com/lox/jmaetrn/internal/models"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Value
	}{
		{"--", models.Value{}},
		{"///", models.Value{}},
		{"", models.Value{}},
		{"#", models.Value{}},
		{"8.5", models.Value{Kind: models.Number, Num: 8.5}},
		{"-3.2", models.Value{Kind: models.Number, Num: -3.2}},
		{"12", models.Value{Kind: models.Integer, Int: 12}},
		{"0", models.Value{Kind: models.Integer, Int: 0}},
		{"北", models.Value{Kind: models.Compass, Direction: models.DirN}},
		{"北北西", models.Value{Kind: models.Compass, Direction: models.DirNNW}},
		{"南西", models.Value{Kind: models.Compass, Direction: models.DirSW}},
		{"静穏", models.Value{}},
		{"12.3]", models.Value{Kind: models.Number, Num: 12.3}},
		{"1012.4)", models.Value{Kind: models.Number, Num: 1012.4}},
		{"×", models.Value{}},
		{"12.0 ×", models.Value{}},
		{"10-", models.Value{Kind: models.Text, Str: "10-"}},
		{"0+", models.Value{Kind: models.Text, Str: "0+"}},
		{"1.2.3", models.Value{Kind: models.Text, Str: "1.2.3"}},
		{"快晴", models.Value{Kind: models.Text, Str: "快晴"}},
	}

	for _, tt := range tests {
		got := Sanitize(tt.raw)
		if got != tt.want {
			t.Errorf("Sanitize(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestSanitize_CompassLexiconComplete(t *testing.T) {
	if len(compassLexicon) != 16 {
		t.Fatalf("compass lexicon has %d entries, want 16", len(compassLexicon))
	}
	seen := make(map[models.Direction]bool)
	for name, d := range compassLexicon {
		if _, ok := d.Degrees(); !ok {
			t.Errorf("%s maps to unknown direction %q", name, d)
		}
		if seen[d] {
			t.Errorf("direction %q mapped twice", d)
		}
		seen[d] = true
	}
}

func TestSanitize_NeverPanics(t *testing.T) {
	inputs := []string{"]", ")", ".", ".]", "-", "\x00", "９", "1e10", "99999999999999999999", "NaN"}
	for _, in := range inputs {
		_ = Sanitize(in)
	}
}
