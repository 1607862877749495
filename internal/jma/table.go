package jma

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lox/jmaetrn/internal/models"
)

const (
	tableSelector = "#tablefix1"
	headerRows    = 2
)

// cells is one table row after the time column has been read.
type cells struct {
	at   time.Time
	url  string
	tds  *goquery.Selection
	vals []models.Value // sanitized text of every td, index-aligned with tds
}

func (c cells) str(i int) *string        { return c.vals[i].StringPtr() }
func (c cells) header() models.RowHeader { return models.RowHeader{ObservedAt: c.at, URL: c.url} }

// num reads a numeric column. Integer readings flagged as estimated or
// interrupted ("85)", "12]") sanitize to Text and are read back here.
func (c cells) num(i int) *float64 {
	v := c.vals[i]
	if v.Kind != models.Text {
		return v.FloatPtr()
	}
	f, err := strconv.ParseFloat(stripQualityMarker(v.Str), 64)
	if err != nil {
		return nil
	}
	return &f
}

func (c cells) dir(i int) models.Direction {
	v := c.vals[i]
	if v.Kind != models.Text {
		return v.Dir()
	}
	return compassLexicon[stripQualityMarker(v.Str)]
}

func stripQualityMarker(s string) string {
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSuffix(s, ")")
}

type schemaKey struct {
	freq  models.Frequency
	class models.StationClass
}

// schema describes one table layout: how many td cells a row has and how
// they map onto a row type.
type schema struct {
	columns int
	decode  func(c cells) (models.ObservationRow, error)
}

var schemas = map[schemaKey]schema{
	{models.Hourly, models.ClassFull}: {
		columns: 17,
		decode: func(c cells) (models.ObservationRow, error) {
			weather, err := weatherIcon(c.tds.Eq(14))
			if err != nil {
				return nil, err
			}
			return models.HourlyFull{
				RowHeader:       c.header(),
				PressureStation: c.num(1),
				PressureSea:     c.num(2),
				Precipitation:   c.num(3),
				Temperature:     c.num(4),
				DewPoint:        c.num(5),
				VaporPressure:   c.num(6),
				Humidity:        c.num(7),
				WindSpeed:       c.num(8),
				WindDirection:   c.dir(9),
				Sunshine:        c.num(10),
				SolarIrradiance: c.num(11),
				Snowfall:        c.num(12),
				SnowDepth:       c.num(13),
				Weather:         weather,
				CloudCover:      c.str(15),
				Visibility:      c.num(16),
			}, nil
		},
	},
	{models.Hourly, models.ClassAuto}: {
		columns: 8,
		decode: func(c cells) (models.ObservationRow, error) {
			return models.HourlyAuto{
				RowHeader:     c.header(),
				Precipitation: c.num(1),
				Temperature:   c.num(2),
				WindSpeed:     c.num(3),
				WindDirection: c.dir(4),
				Sunshine:      c.num(5),
				Snowfall:      c.num(6),
				SnowDepth:     c.num(7),
			}, nil
		},
	},
	{models.TenMinutely, models.ClassFull}: {
		columns: 11,
		decode: func(c cells) (models.ObservationRow, error) {
			return models.TenMinutelyFull{
				RowHeader:         c.header(),
				PressureStation:   c.num(1),
				PressureSea:       c.num(2),
				Precipitation:     c.num(3),
				Temperature:       c.num(4),
				Humidity:          c.num(5),
				MeanWindSpeed:     c.num(6),
				MeanWindDirection: c.dir(7),
				MaxGustSpeed:      c.num(8),
				MaxGustDirection:  c.dir(9),
				SunshineMinutes:   c.num(10),
			}, nil
		},
	},
	{models.TenMinutely, models.ClassAuto}: {
		columns: 8,
		decode: func(c cells) (models.ObservationRow, error) {
			return models.TenMinutelyAuto{
				RowHeader:         c.header(),
				Precipitation:     c.num(1),
				Temperature:       c.num(2),
				MeanWindSpeed:     c.num(3),
				MeanWindDirection: c.dir(4),
				MaxGustSpeed:      c.num(5),
				MaxGustDirection:  c.dir(6),
				SunshineMinutes:   c.num(7),
			}, nil
		},
	},
}

// schemaFor picks the layout of a row. With a known class the cell count
// must match that class exactly; otherwise the count selects between the
// frequency's two layouts.
func schemaFor(freq models.Frequency, class models.StationClass, n int) (schema, models.StationClass, bool) {
	if class.Valid() {
		s, ok := schemas[schemaKey{freq, class}]
		return s, class, ok && s.columns == n
	}
	for _, cl := range []models.StationClass{models.ClassFull, models.ClassAuto} {
		if s, ok := schemas[schemaKey{freq, cl}]; ok && s.columns == n {
			return s, cl, true
		}
	}
	return schema{}, "", false
}

// HasTable reports whether the document carries an observation table.
func HasTable(doc *goquery.Document) bool {
	return doc.Find(tableSelector).Length() > 0
}

// Rows is a finite, single-pass sequence of decoded rows from one page.
type Rows struct {
	rows   *goquery.Selection
	freq   models.Frequency
	class  models.StationClass
	base   time.Time
	url    string
	errCtx Error
	used   atomic.Bool
	onRow  func(models.ObservationRow)
	onErr  func(error)
}

// ParseRows prepares the rows of an observation table. base is midnight of
// the observed day; class may be empty when unknown. Nothing is decoded
// until the sequence is iterated.
func ParseRows(doc *goquery.Document, freq models.Frequency, class models.StationClass, base time.Time, sourceURL string) *Rows {
	trs := doc.Find(tableSelector).First().Find("tr")
	if trs.Length() > headerRows {
		trs = trs.Slice(headerRows, trs.Length())
	} else {
		trs = trs.Slice(0, 0)
	}
	return &Rows{
		rows:  trs,
		freq:  freq,
		class: class,
		base:  base,
		url:   sourceURL,
	}
}

// Len is the number of data rows on the page.
func (r *Rows) Len() int {
	return r.rows.Length()
}

// All yields rows in table order. Decoding stops at the first error, which
// is yielded with a nil row. A second call yields ErrRowsConsumed.
func (r *Rows) All() iter.Seq2[models.ObservationRow, error] {
	return func(yield func(models.ObservationRow, error) bool) {
		if !r.used.CompareAndSwap(false, true) {
			yield(nil, ErrRowsConsumed)
			return
		}
		if !r.freq.Valid() {
			yield(nil, r.fail(KindInvalidFrequency, fmt.Sprintf("%q", r.freq)))
			return
		}

		var prev time.Duration
		for i := range r.rows.Length() {
			tds := r.rows.Eq(i).Find("td")
			row, offset, err := r.decode(tds)
			if err == nil && offset <= prev {
				err = r.fail(KindSchemaMismatch, fmt.Sprintf("row %d: time offset %s does not follow %s", i+1, offset, prev))
			}
			if err != nil {
				if r.onErr != nil {
					r.onErr(err)
				}
				yield(nil, err)
				return
			}
			prev = offset
			if r.onRow != nil {
				r.onRow(row)
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Collect drains the sequence.
func (r *Rows) Collect() ([]models.ObservationRow, error) {
	var out []models.ObservationRow
	for row, err := range r.All() {
		if err != nil {
			return out, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *Rows) decode(tds *goquery.Selection) (models.ObservationRow, time.Duration, error) {
	n := tds.Length()
	s, _, ok := schemaFor(r.freq, r.class, n)
	if !ok {
		return nil, 0, r.fail(KindSchemaMismatch, fmt.Sprintf("%s row has %d cells", r.freq, n))
	}

	offset, err := parseOffset(cellText(tds.Eq(0)))
	if err != nil {
		return nil, 0, r.fail(KindSchemaMismatch, err.Error())
	}

	c := cells{
		at:   r.base.Add(offset),
		url:  r.url,
		tds:  tds,
		vals: make([]models.Value, n),
	}
	tds.Each(func(i int, td *goquery.Selection) {
		if i > 0 {
			c.vals[i] = Sanitize(cellText(td))
		}
	})

	row, err := s.decode(c)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.PrecNo, e.BlockNo, e.Date, e.URL = r.errCtx.PrecNo, r.errCtx.BlockNo, r.errCtx.Date, r.url
		}
		return nil, 0, err
	}
	return row, offset, nil
}

func (r *Rows) fail(kind Kind, detail string) *Error {
	e := r.errCtx
	e.Kind = kind
	e.URL = r.url
	e.Detail = detail
	return &e
}

// parseOffset reads the time column: "H" for hourly pages, "H:MM" for
// ten-minutely pages.
func parseOffset(s string) (time.Duration, error) {
	h, m, hasMinutes := strings.Cut(s, ":")
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("time cell %q is not H or H:MM", s)
	}
	d := time.Duration(hours) * time.Hour
	if hasMinutes {
		minutes, err := strconv.Atoi(m)
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, fmt.Errorf("time cell %q is not H or H:MM", s)
		}
		d += time.Duration(minutes) * time.Minute
	}
	return d, nil
}

// weatherIcon reads the weather column, which holds at most one icon whose
// alt text describes the weather.
func weatherIcon(td *goquery.Selection) (*string, error) {
	imgs := td.Find("img")
	switch imgs.Length() {
	case 0:
		return nil, nil
	case 1:
		alt, ok := imgs.Attr("alt")
		if !ok {
			return nil, nil
		}
		alt = strings.TrimSpace(alt)
		return &alt, nil
	default:
		return nil, &Error{Kind: KindAmbiguousWeatherIcon, Detail: fmt.Sprintf("%d icons in weather cell", imgs.Length())}
	}
}

func cellText(td *goquery.Selection) string {
	return strings.TrimSpace(td.Text())
}
