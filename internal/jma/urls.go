package jma

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lox/jmaetrn/internal/models"
)

// DefaultBaseURL is the root of the historical observation pages.
const DefaultBaseURL = "https://www.data.jma.go.jp/obd/stats/etrn"

// PrefectureCatalogURL is the page listing every region.
func PrefectureCatalogURL(base string) string {
	return strings.TrimRight(base, "/") + "/select/prefecture00.php"
}

// StationMapURL is the station map of one region.
func StationMapURL(base, precNo string) string {
	q := url.Values{"prec_no": {precNo}}
	return strings.TrimRight(base, "/") + "/select/prefecture.php?" + q.Encode()
}

// ObservationURL builds the table page for one station-day:
//
//	<base>/view/hourly_<class>1.php?prec_no=..&block_no=..&year=..&month=..&day=..
//	<base>/view/10min_<class>1.php?...
func ObservationURL(base, precNo, blockNo string, class models.StationClass, freq models.Frequency, year, month, day int) (string, error) {
	var page string
	switch freq {
	case models.Hourly:
		page = "hourly"
	case models.TenMinutely:
		page = "10min"
	default:
		return "", &Error{Kind: KindInvalidFrequency, PrecNo: precNo, BlockNo: blockNo, Detail: fmt.Sprintf("%q", freq)}
	}
	q := url.Values{
		"prec_no":  {precNo},
		"block_no": {blockNo},
		"year":     {strconv.Itoa(year)},
		"month":    {strconv.Itoa(month)},
		"day":      {strconv.Itoa(day)},
	}
	return fmt.Sprintf("%s/view/%s_%s1.php?%s", strings.TrimRight(base, "/"), page, string(class), q.Encode()), nil
}

// queryParam reads one parameter from a possibly relative href.
func queryParam(href, key string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	v := u.Query().Get(key)
	return v, v != ""
}
