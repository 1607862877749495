package models

import "time"

// ObservationRow is one decoded table row. The concrete type is one of
// HourlyFull, HourlyAuto, TenMinutelyFull or TenMinutelyAuto.
type ObservationRow interface {
	Time() time.Time
	Frequency() Frequency
	StationClass() StationClass
	SourceURL() string
}

// RowHeader carries the fields shared by every row shape.
type RowHeader struct {
	ObservedAt time.Time `json:"observed_at"`
	URL        string    `json:"url"`
}

func (h RowHeader) Time() time.Time   { return h.ObservedAt }
func (h RowHeader) SourceURL() string { return h.URL }

// HourlyFull is a row of hourly_s1.php. Nil fields had no reading.
type HourlyFull struct {
	RowHeader
	PressureStation *float64  `json:"pressure_station"` // hPa
	PressureSea     *float64  `json:"pressure_sea"`     // hPa
	Precipitation   *float64  `json:"precipitation"`    // mm
	Temperature     *float64  `json:"temperature"`      // °C
	DewPoint        *float64  `json:"dew_point"`        // °C
	VaporPressure   *float64  `json:"vapor_pressure"`   // hPa
	Humidity        *float64  `json:"humidity"`         // %
	WindSpeed       *float64  `json:"wind_speed"`       // m/s
	WindDirection   Direction `json:"wind_direction,omitempty"`
	Sunshine        *float64  `json:"sunshine"`         // hours
	SolarIrradiance *float64  `json:"solar_irradiance"` // MJ/m2
	Snowfall        *float64  `json:"snowfall"`         // cm
	SnowDepth       *float64  `json:"snow_depth"`       // cm
	Weather         *string   `json:"weather"`
	CloudCover      *string   `json:"cloud_cover"` // raw token, e.g. "10-" or "0+"
	Visibility      *float64  `json:"visibility"`  // km
}

func (HourlyFull) Frequency() Frequency       { return Hourly }
func (HourlyFull) StationClass() StationClass { return ClassFull }

// HourlyAuto is a row of hourly_a1.php.
type HourlyAuto struct {
	RowHeader
	Precipitation *float64  `json:"precipitation"`
	Temperature   *float64  `json:"temperature"`
	WindSpeed     *float64  `json:"wind_speed"`
	WindDirection Direction `json:"wind_direction,omitempty"`
	Sunshine      *float64  `json:"sunshine"`
	Snowfall      *float64  `json:"snowfall"`
	SnowDepth     *float64  `json:"snow_depth"`
}

func (HourlyAuto) Frequency() Frequency       { return Hourly }
func (HourlyAuto) StationClass() StationClass { return ClassAuto }

// TenMinutelyFull is a row of 10min_s1.php.
type TenMinutelyFull struct {
	RowHeader
	PressureStation   *float64  `json:"pressure_station"`
	PressureSea       *float64  `json:"pressure_sea"`
	Precipitation     *float64  `json:"precipitation"`
	Temperature       *float64  `json:"temperature"`
	Humidity          *float64  `json:"humidity"`
	MeanWindSpeed     *float64  `json:"mean_wind_speed"`
	MeanWindDirection Direction `json:"mean_wind_direction,omitempty"`
	MaxGustSpeed      *float64  `json:"max_gust_speed"`
	MaxGustDirection  Direction `json:"max_gust_direction,omitempty"`
	SunshineMinutes   *float64  `json:"sunshine_minutes"`
}

func (TenMinutelyFull) Frequency() Frequency       { return TenMinutely }
func (TenMinutelyFull) StationClass() StationClass { return ClassFull }

// TenMinutelyAuto is a row of 10min_a1.php.
type TenMinutelyAuto struct {
	RowHeader
	Precipitation     *float64  `json:"precipitation"`
	Temperature       *float64  `json:"temperature"`
	MeanWindSpeed     *float64  `json:"mean_wind_speed"`
	MeanWindDirection Direction `json:"mean_wind_direction,omitempty"`
	MaxGustSpeed      *float64  `json:"max_gust_speed"`
	MaxGustDirection  Direction `json:"max_gust_direction,omitempty"`
	SunshineMinutes   *float64  `json:"sunshine_minutes"`
}

func (TenMinutelyAuto) Frequency() Frequency       { return TenMinutely }
func (TenMinutelyAuto) StationClass() StationClass { return ClassAuto }
