package jma

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"github.com/lox/jmaetrn/internal/metrics"
	"github.com/lox/jmaetrn/internal/models"
)

// Fetcher retrieves and parses one HTML page. Implementations own timeouts
// and must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Client composes station lookup, URL building, table decoding and failure
// classification. It holds no mutable state besides the optional station
// cache, so one Client may be shared by many goroutines.
type Client struct {
	fetcher      Fetcher
	baseURL      string
	stationCache *stationCache
}

type Option func(*Client)

// WithBaseURL points the client at a different host (tests, mirrors).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithStationCache keeps each region's station list for ttl. A zero ttl
// disables the cache. clock may be nil.
func WithStationCache(ttl time.Duration, clock clockwork.Clock) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.stationCache = nil
			return
		}
		c.stationCache = newStationCache(ttl, clock)
	}
}

func NewClient(fetcher Fetcher, opts ...Option) *Client {
	c := &Client{
		fetcher: fetcher,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the fetcher's connections if it holds any.
func (c *Client) Close() error {
	if closer, ok := c.fetcher.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Hourly returns the hourly table of one station-day.
func (c *Client) Hourly(ctx context.Context, precNo, blockNo string, year, month, day int) (*Rows, error) {
	return c.Observations(ctx, models.Hourly, precNo, blockNo, year, month, day)
}

// TenMinutely returns the ten-minute table of one station-day.
func (c *Client) TenMinutely(ctx context.Context, precNo, blockNo string, year, month, day int) (*Rows, error) {
	return c.Observations(ctx, models.TenMinutely, precNo, blockNo, year, month, day)
}

// PrefectureStations lists the stations of a prefecture from the catalog.
func (c *Client) PrefectureStations(ctx context.Context, p models.Prefecture) ([]models.Station, error) {
	return c.Stations(ctx, p.ID)
}

// StationHourly returns the hourly table of st for the JST calendar day of date.
func (c *Client) StationHourly(ctx context.Context, st models.Station, date time.Time) (*Rows, error) {
	d := date.In(models.JST)
	return c.Observations(ctx, models.Hourly, st.PrecNo, st.BlockNo, d.Year(), int(d.Month()), d.Day())
}

// StationTenMinutely returns the ten-minute table of st for the JST calendar
// day of date.
func (c *Client) StationTenMinutely(ctx context.Context, st models.Station, date time.Time) (*Rows, error) {
	d := date.In(models.JST)
	return c.Observations(ctx, models.TenMinutely, st.PrecNo, st.BlockNo, d.Year(), int(d.Month()), d.Day())
}

// Observations validates the date, resolves the station, fetches its table
// page and returns the undecoded rows. Errors that describe the request or
// the page come back as *Error; transport failures are returned wrapped.
func (c *Client) Observations(ctx context.Context, freq models.Frequency, precNo, blockNo string, year, month, day int) (*Rows, error) {
	date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	base, ok := calendarDate(year, month, day)
	if !ok {
		return nil, c.countError(&Error{Kind: KindInvalidDate, PrecNo: precNo, BlockNo: blockNo, Detail: fmt.Sprintf("%d/%d/%d", year, month, day)})
	}
	if !freq.Valid() {
		return nil, c.countError(&Error{Kind: KindInvalidFrequency, PrecNo: precNo, BlockNo: blockNo, Date: date, Detail: fmt.Sprintf("%q", freq)})
	}

	station, err := c.Station(ctx, precNo, blockNo)
	if err != nil {
		return nil, err
	}

	url, err := ObservationURL(c.baseURL, precNo, blockNo, station.Class, freq, year, month, day)
	if err != nil {
		return nil, c.countError(err)
	}
	doc, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	errCtx := Error{PrecNo: precNo, BlockNo: blockNo, Date: date, URL: url}
	if !HasTable(doc) {
		return nil, c.countError(classifyMissingTable(doc, errCtx))
	}

	rows := ParseRows(doc, freq, station.Class, base, url)
	rows.errCtx = errCtx
	rows.onRow = func(models.ObservationRow) {
		metrics.RowsDecoded.WithLabelValues(string(freq), station.Class.String()).Inc()
	}
	rows.onErr = func(err error) { c.countError(err) }
	return rows, nil
}

func (c *Client) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	doc, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return doc, nil
}

// countError records domain errors by kind and passes err through.
func (c *Client) countError(err error) error {
	if k := KindOf(err); k != 0 {
		metrics.DomainErrors.WithLabelValues(k.String()).Inc()
	}
	return err
}
