package jma

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lox/jmaetrn/internal/models"
)

// The station-map page carries per-station metadata in an onmouseover
// handler:
//
//	javascript:viewPoint('s','47636','名古屋','ナゴヤ','35','10.0','136','57.9','51.1','1','1','1','1','1','9999','99','99',...);
//
// Fields are positional after stripping quotes and splitting on commas.
var viewPointPattern = regexp.MustCompile(`^javascript:viewPoint\((.+)\);$`)

const (
	fieldClass = iota
	fieldBlockNo
	fieldName
	fieldNameKana
	fieldLatDegrees
	fieldLatMinutes
	fieldLonDegrees
	fieldLonMinutes
	fieldAltitude
	fieldHasPrecipitation
	fieldHasWind
	fieldHasTemperature
	fieldHasSunshine
	fieldHasSnowDepth
	fieldEndYear
	fieldEndMonth
	fieldEndDay

	stationInfoFields
)

// StationInfo is the decoded viewPoint payload.
type StationInfo struct {
	Class              models.StationClass
	BlockNo            string
	Name               string
	NameKana           string
	Latitude           models.GeoCoordinate
	Longitude          models.GeoCoordinate
	Altitude           float64
	Capabilities       models.Capabilities
	ObservationEndDate *time.Time
}

// DecodeStationInfo parses an onmouseover attribute. Any deviation from the
// expected grammar is a KindDecode error: it means the page format changed.
func DecodeStationInfo(attr string) (StationInfo, error) {
	m := viewPointPattern.FindStringSubmatch(strings.TrimSpace(attr))
	if m == nil {
		return StationInfo{}, decodeErr(attr, "does not match viewPoint(...)")
	}
	f := strings.Split(strings.ReplaceAll(m[1], "'", ""), ",")
	if len(f) < stationInfoFields {
		return StationInfo{}, decodeErr(attr, fmt.Sprintf("%d fields, want at least %d", len(f), stationInfoFields))
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}

	info := StationInfo{
		Class:    models.StationClass(f[fieldClass]),
		BlockNo:  f[fieldBlockNo],
		Name:     f[fieldName],
		NameKana: f[fieldNameKana],
	}
	if !info.Class.Valid() {
		return StationInfo{}, decodeErr(attr, fmt.Sprintf("unknown station class %q", f[fieldClass]))
	}

	nums := []struct {
		idx int
		dst *float64
	}{
		{fieldLatDegrees, &info.Latitude.Degrees},
		{fieldLatMinutes, &info.Latitude.Minutes},
		{fieldLonDegrees, &info.Longitude.Degrees},
		{fieldLonMinutes, &info.Longitude.Minutes},
		{fieldAltitude, &info.Altitude},
	}
	for _, n := range nums {
		v, err := strconv.ParseFloat(f[n.idx], 64)
		if err != nil {
			return StationInfo{}, decodeErr(attr, fmt.Sprintf("field %d: %q is not a number", n.idx, f[n.idx]))
		}
		*n.dst = v
	}

	flags := []struct {
		idx int
		dst *bool
	}{
		{fieldHasPrecipitation, &info.Capabilities.Precipitation},
		{fieldHasWind, &info.Capabilities.Wind},
		{fieldHasTemperature, &info.Capabilities.Temperature},
		{fieldHasSunshine, &info.Capabilities.Sunshine},
		{fieldHasSnowDepth, &info.Capabilities.SnowDepth},
	}
	for _, fl := range flags {
		switch f[fl.idx] {
		case "0":
			*fl.dst = false
		case "1":
			*fl.dst = true
		default:
			return StationInfo{}, decodeErr(attr, fmt.Sprintf("field %d: %q is not a 0/1 flag", fl.idx, f[fl.idx]))
		}
	}

	end, err := observationEndDate(f[fieldEndYear], f[fieldEndMonth], f[fieldEndDay])
	if err != nil {
		return StationInfo{}, decodeErr(attr, err.Error())
	}
	info.ObservationEndDate = end

	return info, nil
}

// observationEndDate returns nil for the 9999/99/99 "still active" sentinel.
func observationEndDate(year, month, day string) (*time.Time, error) {
	if year == "9999" || month == "99" || day == "99" {
		return nil, nil
	}
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("end date %s/%s/%s is not numeric", year, month, day)
	}
	t, ok := calendarDate(y, m, d)
	if !ok {
		return nil, fmt.Errorf("end date %s/%s/%s is not a calendar date", year, month, day)
	}
	return &t, nil
}

func decodeErr(attr, detail string) error {
	return &Error{Kind: KindDecode, Detail: fmt.Sprintf("%s in %q", detail, attr)}
}

// calendarDate builds midnight JST for y/m/d, rejecting dates time.Date
// would normalize (month 13, Feb 30, ...).
func calendarDate(y, m, d int) (time.Time, bool) {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, models.JST)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
