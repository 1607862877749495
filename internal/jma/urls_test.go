package jma

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/lox/jmaetrn/internal/models"
)

func TestObservationURL(t *testing.T) {
	tests := []struct {
		class    models.StationClass
		freq     models.Frequency
		wantPath string
	}{
		{models.ClassFull, models.Hourly, "/obd/stats/etrn/view/hourly_s1.php"},
		{models.ClassAuto, models.Hourly, "/obd/stats/etrn/view/hourly_a1.php"},
		{models.ClassFull, models.TenMinutely, "/obd/stats/etrn/view/10min_s1.php"},
		{models.ClassAuto, models.TenMinutely, "/obd/stats/etrn/view/10min_a1.php"},
	}

	for _, tt := range tests {
		raw, err := ObservationURL(DefaultBaseURL, "44", "47662", tt.class, tt.freq, 2024, 6, 1)
		if err != nil {
			t.Fatalf("ObservationURL(%s, %s): %v", tt.class, tt.freq, err)
		}
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("url.Parse(%q): %v", raw, err)
		}
		if u.Path != tt.wantPath {
			t.Errorf("path = %q, want %q", u.Path, tt.wantPath)
		}
	}
}

func TestObservationURL_RoundTrip(t *testing.T) {
	cases := []struct {
		precNo, blockNo  string
		year, month, day int
	}{
		{"44", "47662", 2024, 6, 1},
		{"11", "0001", 1976, 1, 31},
		{"91", "47936", 2023, 12, 9},
	}

	for _, c := range cases {
		raw, err := ObservationURL("https://example.test/etrn/", c.precNo, c.blockNo, models.ClassAuto, models.Hourly, c.year, c.month, c.day)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(raw, "etrn//view") {
			t.Errorf("double slash in %q", raw)
		}
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatal(err)
		}
		q := u.Query()
		got := []string{q.Get("prec_no"), q.Get("block_no"), q.Get("year"), q.Get("month"), q.Get("day")}
		want := []string{c.precNo, c.blockNo, strconv.Itoa(c.year), strconv.Itoa(c.month), strconv.Itoa(c.day)}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("query %v, want %v", got, want)
				break
			}
		}
	}
}

func TestObservationURL_InvalidFrequency(t *testing.T) {
	_, err := ObservationURL(DefaultBaseURL, "44", "47662", models.ClassFull, models.Frequency("daily"), 2024, 6, 1)
	if !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("error = %v, want invalid frequency", err)
	}
}

func TestStationMapURL(t *testing.T) {
	got := StationMapURL(DefaultBaseURL, "44")
	want := "https://www.data.jma.go.jp/obd/stats/etrn/select/prefecture.php?prec_no=44"
	if got != want {
		t.Errorf("StationMapURL = %q, want %q", got, want)
	}
	if got := PrefectureCatalogURL(DefaultBaseURL + "/"); got != "https://www.data.jma.go.jp/obd/stats/etrn/select/prefecture00.php" {
		t.Errorf("PrefectureCatalogURL = %q", got)
	}
}

func TestQueryParam(t *testing.T) {
	href := "prefecture.php?prec_no=44&block_no=47662&year=&month=&day=&view="
	if v, ok := queryParam(href, "block_no"); !ok || v != "47662" {
		t.Errorf("block_no = %q, %v", v, ok)
	}
	if _, ok := queryParam(href, "year"); ok {
		t.Error("empty parameter should report false")
	}
	if _, ok := queryParam("../index.php", "prec_no"); ok {
		t.Error("missing parameter should report false")
	}
}
