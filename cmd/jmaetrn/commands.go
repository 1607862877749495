package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lox/jmaetrn/internal/ingest"
	"github.com/lox/jmaetrn/internal/jma"
	"github.com/lox/jmaetrn/internal/models"
)

const dateLayout = "2006-01-02"

type PrefecturesCmd struct{}

func (c *PrefecturesCmd) Run(ctx context.Context, app *App) error {
	prefectures, err := app.Client.Prefectures(ctx)
	if err != nil {
		return err
	}
	for _, p := range prefectures {
		if err := app.Out.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

type StationsCmd struct {
	PrecNo     string `arg:"" name:"prec-no" help:"Region code, e.g. 44 for Tokyo."`
	ActiveOnly bool   `name:"active" help:"Only stations still observing."`
}

func (c *StationsCmd) Run(ctx context.Context, app *App) error {
	stations, err := app.Client.Stations(ctx, c.PrecNo)
	if err != nil {
		return err
	}
	for _, st := range stations {
		if c.ActiveOnly && !st.Active() {
			continue
		}
		if err := app.Out.Encode(st); err != nil {
			return err
		}
	}
	return nil
}

type StationCmd struct {
	PrecNo  string `arg:"" name:"prec-no" help:"Region code."`
	BlockNo string `arg:"" name:"block-no" help:"Station block number."`
}

func (c *StationCmd) Run(ctx context.Context, app *App) error {
	st, err := app.Client.Station(ctx, c.PrecNo, c.BlockNo)
	if err != nil {
		return err
	}
	return app.Out.Encode(st)
}

// DayArgs selects one station-day.
type DayArgs struct {
	PrecNo  string `arg:"" name:"prec-no" help:"Region code."`
	BlockNo string `arg:"" name:"block-no" help:"Station block number."`
	Date    string `arg:"" help:"Observation date (YYYY-MM-DD, JST)."`
}

type HourlyCmd struct {
	DayArgs
}

func (c *HourlyCmd) Run(ctx context.Context, app *App) error {
	return printDay(ctx, app, models.Hourly, c.DayArgs)
}

type TenMinCmd struct {
	DayArgs
}

func (c *TenMinCmd) Run(ctx context.Context, app *App) error {
	return printDay(ctx, app, models.TenMinutely, c.DayArgs)
}

// rowRecord is one output line.
type rowRecord struct {
	PrecNo       string                `json:"prec_no"`
	BlockNo      string                `json:"block_no"`
	Frequency    models.Frequency      `json:"frequency"`
	StationClass string                `json:"station_class"`
	Row          models.ObservationRow `json:"row"`
}

func printDay(ctx context.Context, app *App, freq models.Frequency, args DayArgs) error {
	day, err := parseDate(args.Date)
	if err != nil {
		return err
	}
	rows, err := app.Client.Observations(ctx, freq, args.PrecNo, args.BlockNo, day.Year(), int(day.Month()), day.Day())
	if err != nil {
		return err
	}
	for row, err := range rows.All() {
		if err != nil {
			return err
		}
		if err := app.Out.Encode(newRowRecord(args.PrecNo, args.BlockNo, row)); err != nil {
			return err
		}
	}
	return nil
}

func newRowRecord(precNo, blockNo string, row models.ObservationRow) rowRecord {
	return rowRecord{
		PrecNo:       precNo,
		BlockNo:      blockNo,
		Frequency:    row.Frequency(),
		StationClass: row.StationClass().String(),
		Row:          row,
	}
}

type BackfillCmd struct {
	PrecNo   string   `arg:"" name:"prec-no" help:"Region code."`
	BlockNos []string `arg:"" optional:"" name:"block-no" help:"Station block numbers (default: every active station of the region)."`

	From            string           `help:"First date (YYYY-MM-DD, JST)."`
	To              string           `help:"Last date (YYYY-MM-DD, JST); defaults to yesterday."`
	Days            int              `default:"7" help:"Days ending at --to when --from is not set."`
	Frequency       models.Frequency `default:"hourly" enum:"hourly,ten_minutely" help:"Table interval."`
	Workers         int              `default:"4" help:"Concurrent fetches."`
	MaxRetryElapsed time.Duration    `name:"max-retry-elapsed" default:"2m" help:"Give up retrying a job after this long."`
}

func (c *BackfillCmd) Run(ctx context.Context, app *App) error {
	to := time.Now().In(models.JST).AddDate(0, 0, -1)
	if c.To != "" {
		t, err := parseDate(c.To)
		if err != nil {
			return err
		}
		to = t
	}
	var from time.Time
	switch {
	case c.From != "":
		t, err := parseDate(c.From)
		if err != nil {
			return err
		}
		from = t
	case c.Days > 0:
		from = to.AddDate(0, 0, -(c.Days - 1))
	default:
		return fmt.Errorf("--days must be positive")
	}
	if from.After(to) {
		return fmt.Errorf("--from %s is after --to %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	blockNos := c.BlockNos
	if len(blockNos) == 0 {
		stations, err := app.Client.Stations(ctx, c.PrecNo)
		if err != nil {
			return err
		}
		for _, st := range stations {
			if st.Active() {
				blockNos = append(blockNos, st.BlockNo)
			}
		}
		log.Printf("backfill: %d active stations in region %s", len(blockNos), c.PrecNo)
	}

	sink := func(job ingest.Job, rows []models.ObservationRow) error {
		for _, row := range rows {
			if err := app.Out.Encode(newRowRecord(job.PrecNo, job.BlockNo, row)); err != nil {
				return err
			}
		}
		return nil
	}

	b := ingest.NewBackfill(app.Client, sink, c.Workers)
	b.SetMaxRetryElapsed(c.MaxRetryElapsed)

	report, err := b.Run(ctx, ingest.Jobs(c.PrecNo, blockNos, from, to, c.Frequency))
	if report != nil {
		log.Printf("backfill: run %s: jobs=%d succeeded=%d failed=%d skipped=%d rows=%d flagged=%d errors=%v",
			report.RunID, report.Jobs, report.Succeeded, report.Failed, report.Skipped, report.Rows, report.FlaggedRows, report.ErrorsByKind)
	}
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", report.Failed, report.Jobs)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, models.JST)
	if err != nil {
		return time.Time{}, &jma.Error{Kind: jma.KindInvalidDate, Detail: fmt.Sprintf("%q: %v", s, err)}
	}
	return t, nil
}
