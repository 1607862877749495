package jma

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"github.com/lox/jmaetrn/internal/models"
)

// allStationsBlock is the "all stations in the region" pseudo entry.
const allStationsBlock = "00"

// Prefectures lists every region from the catalog page.
func (c *Client) Prefectures(ctx context.Context) ([]models.Prefecture, error) {
	doc, err := c.fetch(ctx, PrefectureCatalogURL(c.baseURL))
	if err != nil {
		return nil, err
	}
	return parsePrefectures(doc), nil
}

func parsePrefectures(doc *goquery.Document) []models.Prefecture {
	var prefectures []models.Prefecture
	doc.Find("area").Each(func(_ int, area *goquery.Selection) {
		href, _ := area.Attr("href")
		precNo, ok := queryParam(href, "prec_no")
		if !ok {
			return
		}
		name, _ := area.Attr("alt")
		prefectures = append(prefectures, models.Prefecture{ID: precNo, Name: strings.TrimSpace(name)})
	})
	return prefectures
}

// Stations resolves every station of a region.
func (c *Client) Stations(ctx context.Context, precNo string) ([]models.Station, error) {
	if c.stationCache != nil {
		if stations, ok := c.stationCache.get(precNo); ok {
			return stations, nil
		}
	}

	doc, err := c.fetch(ctx, StationMapURL(c.baseURL, precNo))
	if err != nil {
		return nil, err
	}
	stations, err := parseStations(doc, precNo)
	if err != nil {
		c.countError(err)
		return nil, err
	}

	if c.stationCache != nil {
		c.stationCache.put(precNo, stations)
	}
	return stations, nil
}

// Station resolves a single station by block number.
func (c *Client) Station(ctx context.Context, precNo, blockNo string) (models.Station, error) {
	stations, err := c.Stations(ctx, precNo)
	if err != nil {
		return models.Station{}, err
	}
	for _, st := range stations {
		if st.BlockNo == blockNo {
			return st, nil
		}
	}
	err = &Error{Kind: KindInvalidBlock, PrecNo: precNo, BlockNo: blockNo}
	c.countError(err)
	return models.Station{}, err
}

// parseStations decodes the area elements of a station-map page. The page
// lists every station twice and links to neighbouring regions as well.
func parseStations(doc *goquery.Document, precNo string) ([]models.Station, error) {
	areas := doc.Find("area")
	if areas.Length() == 0 {
		return nil, &Error{Kind: KindInvalidPrefecture, PrecNo: precNo}
	}

	var stations []models.Station
	seen := make(map[string]bool)
	var decodeErr error
	areas.EachWithBreak(func(_ int, area *goquery.Selection) bool {
		href, _ := area.Attr("href")
		if p, _ := queryParam(href, "prec_no"); p != precNo {
			return true
		}
		blockNo, ok := queryParam(href, "block_no")
		if !ok || blockNo == allStationsBlock || seen[blockNo] {
			return true
		}

		onmouseover, ok := area.Attr("onmouseover")
		if !ok {
			decodeErr = &Error{Kind: KindDecode, PrecNo: precNo, BlockNo: blockNo, Detail: "area has no onmouseover attribute"}
			return false
		}
		info, err := DecodeStationInfo(onmouseover)
		if err != nil {
			if e, ok := err.(*Error); ok {
				e.PrecNo, e.BlockNo = precNo, blockNo
			}
			decodeErr = err
			return false
		}

		seen[blockNo] = true
		stations = append(stations, models.Station{
			PrecNo:             precNo,
			BlockNo:            blockNo,
			Name:               info.Name,
			NameKana:           info.NameKana,
			Latitude:           info.Latitude,
			Longitude:          info.Longitude,
			Altitude:           info.Altitude,
			Class:              info.Class,
			Capabilities:       info.Capabilities,
			ObservationEndDate: info.ObservationEndDate,
		})
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return stations, nil
}

// stationCache holds decoded station lists per region for a fixed TTL.
type stationCache struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[string]cachedStations
}

type cachedStations struct {
	stations  []models.Station
	fetchedAt time.Time
}

func newStationCache(ttl time.Duration, clock clockwork.Clock) *stationCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &stationCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cachedStations),
	}
}

func (c *stationCache) get(precNo string) ([]models.Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[precNo]
	if !ok || c.clock.Since(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	out := make([]models.Station, len(e.stations))
	copy(out, e.stations)
	return out, true
}

func (c *stationCache) put(precNo string, stations []models.Station) {
	stored := make([]models.Station, len(stations))
	copy(stored, stations)

	c.mu.Lock()
	c.entries[precNo] = cachedStations{stations: stored, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
}
