package models

import (
	"strconv"
	"time"
)

// JST is the zone every observation table is published in.
var JST = time.FixedZone("JST", 9*60*60)

type Prefecture struct {
	ID   string `json:"prec_no"`
	Name string `json:"name"`
}

// StationClass is the instrumentation tier of a station.
type StationClass string

const (
	ClassFull StationClass = "s" // manned/richly instrumented observatory
	ClassAuto StationClass = "a" // AMeDAS automated station
)

func (c StationClass) Valid() bool {
	return c == ClassFull || c == ClassAuto
}

func (c StationClass) String() string {
	switch c {
	case ClassFull:
		return "full"
	case ClassAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Frequency is the observation interval of a table.
type Frequency string

const (
	Hourly      Frequency = "hourly"
	TenMinutely Frequency = "ten_minutely"
)

func (f Frequency) Valid() bool {
	return f == Hourly || f == TenMinutely
}

// Step returns the spacing between consecutive rows.
func (f Frequency) Step() time.Duration {
	if f == TenMinutely {
		return 10 * time.Minute
	}
	return time.Hour
}

// GeoCoordinate is kept in the source's degrees/minutes form.
type GeoCoordinate struct {
	Degrees float64 `json:"degrees"`
	Minutes float64 `json:"minutes"`
}

// Decimal converts to decimal degrees.
func (g GeoCoordinate) Decimal() float64 {
	if g.Degrees < 0 {
		return g.Degrees - g.Minutes/60
	}
	return g.Degrees + g.Minutes/60
}

type Capabilities struct {
	Precipitation bool `json:"precipitation"`
	Wind          bool `json:"wind"`
	Temperature   bool `json:"temperature"`
	Sunshine      bool `json:"sunshine"`
	SnowDepth     bool `json:"snow_depth"`
}

type Station struct {
	PrecNo             string        `json:"prec_no"`
	BlockNo            string        `json:"block_no"`
	Name               string        `json:"name"`
	NameKana           string        `json:"name_kana"`
	Latitude           GeoCoordinate `json:"latitude"`
	Longitude          GeoCoordinate `json:"longitude"`
	Altitude           float64       `json:"altitude"`
	Class              StationClass  `json:"station_class"`
	Capabilities       Capabilities  `json:"capabilities"`
	ObservationEndDate *time.Time    `json:"observation_end_date,omitempty"` // nil while the station is active
}

// Active reports whether the station is still observing.
func (s Station) Active() bool {
	return s.ObservationEndDate == nil
}

// Direction is a 16-point compass code. The empty value means no reading
// (including calm).
type Direction string

const (
	DirN   Direction = "N"
	DirNNE Direction = "NNE"
	DirNE  Direction = "NE"
	DirENE Direction = "ENE"
	DirE   Direction = "E"
	DirESE Direction = "ESE"
	DirSE  Direction = "SE"
	DirSSE Direction = "SSE"
	DirS   Direction = "S"
	DirSSW Direction = "SSW"
	DirSW  Direction = "SW"
	DirWSW Direction = "WSW"
	DirW   Direction = "W"
	DirWNW Direction = "WNW"
	DirNW  Direction = "NW"
	DirNNW Direction = "NNW"
)

var compassOrder = []Direction{DirN, DirNNE, DirNE, DirENE, DirE, DirESE, DirSE, DirSSE, DirS, DirSSW, DirSW, DirWSW, DirW, DirWNW, DirNW, DirNNW}

// Degrees returns the bearing of the direction, or false when absent.
func (d Direction) Degrees() (float64, bool) {
	for i, c := range compassOrder {
		if c == d {
			return float64(i) * 22.5, true
		}
	}
	return 0, false
}

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	Absent ValueKind = iota
	Number
	Integer
	Compass
	Text
)

// Value is a sanitized table cell.
type Value struct {
	Kind      ValueKind
	Num       float64
	Int       int64
	Direction Direction
	Str       string
}

func (v Value) IsAbsent() bool {
	return v.Kind == Absent
}

// Float returns the numeric value for Number and Integer cells.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, true
	case Integer:
		return float64(v.Int), true
	default:
		return 0, false
	}
}

// FloatPtr converts numeric cells; anything else is nil.
func (v Value) FloatPtr() *float64 {
	f, ok := v.Float()
	if !ok {
		return nil
	}
	return &f
}

// String renders the cell as text. Absent cells render empty.
func (v Value) String() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Compass:
		return string(v.Direction)
	case Text:
		return v.Str
	default:
		return ""
	}
}

// StringPtr is String with nil for absent cells.
func (v Value) StringPtr() *string {
	if v.Kind == Absent {
		return nil
	}
	s := v.String()
	return &s
}

// Dir returns the compass code of a direction cell, empty otherwise.
func (v Value) Dir() Direction {
	if v.Kind == Compass {
		return v.Direction
	}
	return ""
}
