package jma

import (
	"errors"
	"testing"
	"time"

	"github.com/lox/jmaetrn/internal/models"
)

func TestDecodeStationInfo(t *testing.T) {
	attr := "javascript:viewPoint('s','47662','東京','トウキョウ','35','41.5','139','45.0','25.2','1','1','1','1','1','9999','99','99','','','','','');"

	info, err := DecodeStationInfo(attr)
	if err != nil {
		t.Fatalf("DecodeStationInfo: %v", err)
	}
	if info.Class != models.ClassFull {
		t.Errorf("Class = %q, want s", info.Class)
	}
	if info.Name != "東京" || info.NameKana != "トウキョウ" {
		t.Errorf("Name = %q/%q", info.Name, info.NameKana)
	}
	if info.Latitude != (models.GeoCoordinate{Degrees: 35, Minutes: 41.5}) {
		t.Errorf("Latitude = %+v", info.Latitude)
	}
	if info.Longitude != (models.GeoCoordinate{Degrees: 139, Minutes: 45}) {
		t.Errorf("Longitude = %+v", info.Longitude)
	}
	if info.Altitude != 25.2 {
		t.Errorf("Altitude = %v, want 25.2", info.Altitude)
	}
	want := models.Capabilities{Precipitation: true, Wind: true, Temperature: true, Sunshine: true, SnowDepth: true}
	if info.Capabilities != want {
		t.Errorf("Capabilities = %+v, want %+v", info.Capabilities, want)
	}
	if info.ObservationEndDate != nil {
		t.Errorf("ObservationEndDate = %v, want nil for the active sentinel", info.ObservationEndDate)
	}
}

func TestDecodeStationInfo_SingleQuotedPayload(t *testing.T) {
	attr := "javascript:viewPoint('a,0366,練馬,ネリマ,35,44.1,139,40.0,38,1,1,1,1,0,9999,99,99');"

	info, err := DecodeStationInfo(attr)
	if err != nil {
		t.Fatalf("DecodeStationInfo: %v", err)
	}
	if info.Class != models.ClassAuto || info.BlockNo != "0366" {
		t.Errorf("got class %q block %q", info.Class, info.BlockNo)
	}
	if info.Capabilities.SnowDepth {
		t.Error("SnowDepth should be false")
	}
}

func TestDecodeStationInfo_EndDate(t *testing.T) {
	attr := "javascript:viewPoint('a','0368','青梅旧','オウメキュウ','35','47.3','139','14.7','190','1','0','0','0','0','1978','10','31');"

	info, err := DecodeStationInfo(attr)
	if err != nil {
		t.Fatalf("DecodeStationInfo: %v", err)
	}
	if info.ObservationEndDate == nil {
		t.Fatal("ObservationEndDate is nil, want 1978-10-31")
	}
	want := time.Date(1978, 10, 31, 0, 0, 0, 0, models.JST)
	if !info.ObservationEndDate.Equal(want) {
		t.Errorf("ObservationEndDate = %v, want %v", info.ObservationEndDate, want)
	}
}

func TestDecodeStationInfo_Malformed(t *testing.T) {
	tests := []struct {
		name string
		attr string
	}{
		{"not a viewPoint call", "javascript:showPoint(47662);"},
		{"missing trailing semicolon", "javascript:viewPoint('s','47662','東京','トウキョウ','35','41.5','139','45.0','25.2','1','1','1','1','1','9999','99','99')"},
		{"empty", ""},
		{"too few fields", "javascript:viewPoint('s','47662','東京');"},
		{"unknown class", "javascript:viewPoint('x','47662','東京','トウキョウ','35','41.5','139','45.0','25.2','1','1','1','1','1','9999','99','99');"},
		{"non-numeric latitude", "javascript:viewPoint('s','47662','東京','トウキョウ','north','41.5','139','45.0','25.2','1','1','1','1','1','9999','99','99');"},
		{"bad capability flag", "javascript:viewPoint('s','47662','東京','トウキョウ','35','41.5','139','45.0','25.2','1','yes','1','1','1','9999','99','99');"},
		{"impossible end date", "javascript:viewPoint('a','0368','青梅旧','オウメキュウ','35','47.3','139','14.7','190','1','0','0','0','0','1978','02','30');"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeStationInfo(tt.attr)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("error = %v, want a decode error", err)
			}
			if IsRetryable(err) {
				t.Error("decode errors must not be retryable")
			}
		})
	}
}

func TestCalendarDate(t *testing.T) {
	tests := []struct {
		y, m, d int
		ok      bool
	}{
		{2024, 2, 29, true},
		{2023, 2, 29, false},
		{2024, 13, 1, false},
		{2024, 0, 1, false},
		{2024, 4, 31, false},
		{2100, 1, 1, true},
	}
	for _, tt := range tests {
		_, ok := calendarDate(tt.y, tt.m, tt.d)
		if ok != tt.ok {
			t.Errorf("calendarDate(%d, %d, %d) ok = %v, want %v", tt.y, tt.m, tt.d, ok, tt.ok)
		}
	}
}
