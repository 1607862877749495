package htmlutil

import (
	"strings"
	"testing"
)

func TestToText(t *testing.T) {
	got := ToText(`<p>閲覧可能な日まで<br>戻るか &amp; <b>クリック</b></p>`)
	if strings.Contains(got, "<") {
		t.Errorf("ToText left tags behind: %q", got)
	}
	if !strings.Contains(got, "&") {
		t.Errorf("ToText did not decode entities: %q", got)
	}
	if StripSpace(got) != "閲覧可能な日まで戻るか&クリック" {
		t.Errorf("ToText = %q", got)
	}
}

func TestStripSpace(t *testing.T) {
	if got := StripSpace(" a\tb\n c　d "); got != "abcd" {
		t.Errorf("StripSpace = %q, want abcd", got)
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"a  b\n\nc", 10, "a b c"},
		{"メンテナンス中です", 4, "メンテナ…"},
		{"no limit", 0, "no limit"},
	}
	for _, tt := range tests {
		if got := Excerpt(tt.in, tt.limit); got != tt.want {
			t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
