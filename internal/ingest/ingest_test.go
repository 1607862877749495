package ingest

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/lox/jmaetrn/internal/models"
)

func f(v float64) *float64 { return &v }

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name      string
		row       models.ObservationRow
		wantFlags []string
	}{
		{
			name: "valid hourly full row - no flags",
			row: models.HourlyFull{
				PressureStation: f(1008.2),
				PressureSea:     f(1012.5),
				Precipitation:   f(0.5),
				Temperature:     f(21.3),
				DewPoint:        f(15.0),
				Humidity:        f(68),
				WindSpeed:       f(3.4),
				Sunshine:        f(0.6),
				Visibility:      f(20),
			},
			wantFlags: nil,
		},
		{
			name:      "temp too cold",
			row:       models.HourlyAuto{Temperature: f(-50)},
			wantFlags: []string{FlagTempOutOfRange},
		},
		{
			name:      "temp too hot",
			row:       models.TenMinutelyAuto{Temperature: f(46.1)},
			wantFlags: []string{FlagTempOutOfRange},
		},
		{
			name:      "temp at cold boundary - valid",
			row:       models.HourlyAuto{Temperature: f(-45)},
			wantFlags: nil,
		},
		{
			name:      "dew point shares the temperature flag",
			row:       models.HourlyFull{Temperature: f(50), DewPoint: f(48)},
			wantFlags: []string{FlagTempOutOfRange},
		},
		{
			name:      "humidity over 100",
			row:       models.TenMinutelyFull{Humidity: f(101)},
			wantFlags: []string{FlagHumidityInvalid},
		},
		{
			name:      "pressure too low",
			row:       models.HourlyFull{PressureSea: f(840)},
			wantFlags: []string{FlagPressureOutOfRange},
		},
		{
			name:      "gust speed unlikely",
			row:       models.TenMinutelyFull{MaxGustSpeed: f(95)},
			wantFlags: []string{FlagWindSpeedUnlikely},
		},
		{
			name:      "precip negative",
			row:       models.HourlyAuto{Precipitation: f(-1)},
			wantFlags: []string{FlagPrecipNegative},
		},
		{
			name:      "hourly precip unlikely",
			row:       models.HourlyAuto{Precipitation: f(250)},
			wantFlags: []string{FlagPrecipUnlikely},
		},
		{
			name:      "ten-minute precip limit is tighter",
			row:       models.TenMinutelyAuto{Precipitation: f(80)},
			wantFlags: []string{FlagPrecipUnlikely},
		},
		{
			name:      "hourly sunshine over one hour",
			row:       models.HourlyAuto{Sunshine: f(1.2)},
			wantFlags: []string{FlagSunshineInvalid},
		},
		{
			name:      "ten-minute sunshine in minutes - valid",
			row:       models.TenMinutelyAuto{SunshineMinutes: f(10)},
			wantFlags: nil,
		},
		{
			name:      "visibility negative",
			row:       models.HourlyFull{Visibility: f(-0.1)},
			wantFlags: []string{FlagVisibilityNegative},
		},
		{
			name:      "multiple flags - temp and humidity",
			row:       models.HourlyFull{Temperature: f(60), Humidity: f(150)},
			wantFlags: []string{FlagTempOutOfRange, FlagHumidityInvalid},
		},
		{
			name:      "absent fields - no flags",
			row:       models.TenMinutelyFull{},
			wantFlags: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateRow(tt.row)
			sort.Strings(got)
			want := append([]string(nil), tt.wantFlags...)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Errorf("ValidateRow() = %v, want %v", got, want)
				return
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("ValidateRow() = %v, want %v", got, want)
					return
				}
			}
		})
	}
}

func TestQualityFlagsToJSON(t *testing.T) {
	tests := []struct {
		name      string
		flags     []string
		wantEmpty bool
		wantFlags []string
	}{
		{
			name:      "nil flags",
			flags:     nil,
			wantEmpty: true,
		},
		{
			name:      "single flag",
			flags:     []string{FlagTempOutOfRange},
			wantFlags: []string{FlagTempOutOfRange},
		},
		{
			name:      "multiple flags",
			flags:     []string{FlagTempOutOfRange, FlagHumidityInvalid},
			wantFlags: []string{FlagTempOutOfRange, FlagHumidityInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualityFlagsToJSON(tt.flags)
			if tt.wantEmpty {
				if got != "" {
					t.Errorf("QualityFlagsToJSON() = %q, want empty", got)
				}
				return
			}
			var parsed []string
			if err := json.Unmarshal([]byte(got), &parsed); err != nil {
				t.Fatalf("failed to unmarshal result: %v", err)
			}
			if len(parsed) != len(tt.wantFlags) {
				t.Errorf("QualityFlagsToJSON() parsed = %v, want %v", parsed, tt.wantFlags)
			}
		})
	}
}
