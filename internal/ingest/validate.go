package ingest

import (
	"encoding/json"

	"github.com/lox/jmaetrn/internal/models"
)

const (
	FlagTempOutOfRange     = "temp_out_of_range"
	FlagHumidityInvalid    = "humidity_invalid"
	FlagWindSpeedUnlikely  = "wind_speed_unlikely"
	FlagPressureOutOfRange = "pressure_out_of_range"
	FlagPrecipNegative     = "precip_negative"
	FlagPrecipUnlikely     = "precip_unlikely"
	FlagSunshineInvalid    = "sunshine_invalid"
	FlagVisibilityNegative = "visibility_negative"
)

// Plausibility bounds for surface observations in Japan. Values outside
// are kept but flagged.
const (
	minTemp       = -45.0
	maxTemp       = 45.0
	minPressure   = 850.0
	maxPressure   = 1090.0
	maxWindSpeed  = 90.0
	maxHourlyRain = 200.0
	maxTenMinRain = 60.0
)

// ValidateRow returns quality flags for implausible readings.
func ValidateRow(row models.ObservationRow) []string {
	var flags []string
	add := func(flag string) {
		for _, f := range flags {
			if f == flag {
				return
			}
		}
		flags = append(flags, flag)
	}
	check := func(v *float64, bad func(float64) bool, flag string) {
		if v != nil && bad(*v) {
			add(flag)
		}
	}

	temp := func(v float64) bool { return v < minTemp || v > maxTemp }
	humidity := func(v float64) bool { return v < 0 || v > 100 }
	pressure := func(v float64) bool { return v < minPressure || v > maxPressure }
	wind := func(v float64) bool { return v < 0 || v > maxWindSpeed }
	negative := func(v float64) bool { return v < 0 }
	above := func(limit float64) func(float64) bool {
		return func(v float64) bool { return v > limit }
	}
	outside := func(limit float64) func(float64) bool {
		return func(v float64) bool { return v < 0 || v > limit }
	}

	switch r := row.(type) {
	case models.HourlyFull:
		check(r.Temperature, temp, FlagTempOutOfRange)
		check(r.DewPoint, temp, FlagTempOutOfRange)
		check(r.Humidity, humidity, FlagHumidityInvalid)
		check(r.PressureStation, pressure, FlagPressureOutOfRange)
		check(r.PressureSea, pressure, FlagPressureOutOfRange)
		check(r.WindSpeed, wind, FlagWindSpeedUnlikely)
		check(r.Precipitation, negative, FlagPrecipNegative)
		check(r.Precipitation, above(maxHourlyRain), FlagPrecipUnlikely)
		check(r.Sunshine, outside(1), FlagSunshineInvalid)
		check(r.Visibility, negative, FlagVisibilityNegative)
	case models.HourlyAuto:
		check(r.Temperature, temp, FlagTempOutOfRange)
		check(r.WindSpeed, wind, FlagWindSpeedUnlikely)
		check(r.Precipitation, negative, FlagPrecipNegative)
		check(r.Precipitation, above(maxHourlyRain), FlagPrecipUnlikely)
		check(r.Sunshine, outside(1), FlagSunshineInvalid)
	case models.TenMinutelyFull:
		check(r.Temperature, temp, FlagTempOutOfRange)
		check(r.Humidity, humidity, FlagHumidityInvalid)
		check(r.PressureStation, pressure, FlagPressureOutOfRange)
		check(r.PressureSea, pressure, FlagPressureOutOfRange)
		check(r.MeanWindSpeed, wind, FlagWindSpeedUnlikely)
		check(r.MaxGustSpeed, wind, FlagWindSpeedUnlikely)
		check(r.Precipitation, negative, FlagPrecipNegative)
		check(r.Precipitation, above(maxTenMinRain), FlagPrecipUnlikely)
		check(r.SunshineMinutes, outside(10), FlagSunshineInvalid)
	case models.TenMinutelyAuto:
		check(r.Temperature, temp, FlagTempOutOfRange)
		check(r.MeanWindSpeed, wind, FlagWindSpeedUnlikely)
		check(r.MaxGustSpeed, wind, FlagWindSpeedUnlikely)
		check(r.Precipitation, negative, FlagPrecipNegative)
		check(r.Precipitation, above(maxTenMinRain), FlagPrecipUnlikely)
		check(r.SunshineMinutes, outside(10), FlagSunshineInvalid)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}
