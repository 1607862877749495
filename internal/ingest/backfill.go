package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lox/jmaetrn/internal/jma"
	"github.com/lox/jmaetrn/internal/metrics"
	"github.com/lox/jmaetrn/internal/models"
)

const (
	DefaultWorkers         = 4
	DefaultMaxRetryElapsed = 2 * time.Minute
)

// ObservationSource is the part of jma.Client the backfill needs.
type ObservationSource interface {
	Observations(ctx context.Context, freq models.Frequency, precNo, blockNo string, year, month, day int) (*jma.Rows, error)
}

// Sink receives the rows of one job, in table order. Calls are serialized.
type Sink func(job Job, rows []models.ObservationRow) error

// Job is one station-day table.
type Job struct {
	PrecNo    string
	BlockNo   string
	Date      time.Time
	Frequency models.Frequency
}

func (j Job) String() string {
	return fmt.Sprintf("%s/%s %s %s", j.PrecNo, j.BlockNo, j.Date.Format("2006-01-02"), j.Frequency)
}

// Jobs expands every block of a region over the inclusive date range.
func Jobs(precNo string, blockNos []string, from, to time.Time, freq models.Frequency) []Job {
	var jobs []Job
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, models.JST)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, models.JST)
	for _, blockNo := range blockNos {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			jobs = append(jobs, Job{PrecNo: precNo, BlockNo: blockNo, Date: d, Frequency: freq})
		}
	}
	return jobs
}

// Report summarizes one Run.
type Report struct {
	RunID        string
	Jobs         int
	Succeeded    int
	Failed       int
	Skipped      int
	Rows         int
	FlaggedRows  int
	ErrorsByKind map[string]int
	Flags        map[string]int
}

// Backfill runs many station-day retrievals through a bounded worker pool.
// Transient failures are retried with exponential backoff; domain errors
// fail the job immediately.
type Backfill struct {
	source          ObservationSource
	sink            Sink
	workers         int
	clock           clockwork.Clock
	maxRetryElapsed time.Duration

	sinkMu sync.Mutex
}

func NewBackfill(source ObservationSource, sink Sink, workers int) *Backfill {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Backfill{
		source:          source,
		sink:            sink,
		workers:         workers,
		clock:           clockwork.NewRealClock(),
		maxRetryElapsed: DefaultMaxRetryElapsed,
	}
}

// SetClock replaces the clock used to find today's date in JST.
func (b *Backfill) SetClock(clock clockwork.Clock) {
	b.clock = clock
}

// SetMaxRetryElapsed bounds how long one job may keep retrying.
func (b *Backfill) SetMaxRetryElapsed(d time.Duration) {
	b.maxRetryElapsed = d
}

type jobResult struct {
	job     Job
	rows    int
	flags   map[string]int
	flagged int
	err     error
	skip    bool
}

// Run processes jobs until all are done or ctx is cancelled. Jobs dated
// after today (JST) are skipped without a request.
func (b *Backfill) Run(ctx context.Context, jobs []Job) (*Report, error) {
	report := &Report{
		RunID:        uuid.NewString(),
		Jobs:         len(jobs),
		ErrorsByKind: make(map[string]int),
		Flags:        make(map[string]int),
	}
	now := b.clock.Now().In(models.JST)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, models.JST)

	log.Printf("backfill: run %s: %d jobs, %d workers", report.RunID, len(jobs), b.workers)

	jobCh := make(chan Job)
	resultCh := make(chan jobResult)

	var wg sync.WaitGroup
	for range b.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if job.Date.After(today) {
					resultCh <- jobResult{job: job, skip: true}
					continue
				}
				resultCh <- b.runJob(ctx, job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			if ctx.Err() != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			case jobCh <- job:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		switch {
		case res.skip:
			report.Skipped++
			metrics.BackfillJobs.WithLabelValues("skipped").Inc()
			log.Printf("backfill: %s: skipped, after today", res.job)
		case res.err != nil:
			report.Failed++
			kind := "other"
			if k := jma.KindOf(res.err); k != 0 {
				kind = k.String()
			}
			report.ErrorsByKind[kind]++
			metrics.BackfillJobs.WithLabelValues("failed").Inc()
			log.Printf("backfill: %s: %v", res.job, res.err)
		default:
			report.Succeeded++
			report.Rows += res.rows
			report.FlaggedRows += res.flagged
			for f, n := range res.flags {
				report.Flags[f] += n
			}
			metrics.BackfillJobs.WithLabelValues("succeeded").Inc()
		}
	}

	log.Printf("backfill: run %s: %d succeeded, %d failed, %d skipped, %d rows",
		report.RunID, report.Succeeded, report.Failed, report.Skipped, report.Rows)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (b *Backfill) runJob(ctx context.Context, job Job) jobResult {
	res := jobResult{job: job, flags: make(map[string]int)}

	var rows []models.ObservationRow
	operation := func() error {
		r, err := b.source.Observations(ctx, job.Frequency, job.PrecNo, job.BlockNo,
			job.Date.Year(), int(job.Date.Month()), job.Date.Day())
		if err != nil {
			if !jma.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		// A page that fetched fine but fails to decode will not decode
		// differently on retry.
		rows, err = r.Collect()
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = b.maxRetryElapsed
	notify := func(err error, wait time.Duration) {
		log.Printf("backfill: %s: retrying in %s: %v", job, wait.Round(time.Millisecond), err)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(bo, ctx), notify); err != nil {
		res.err = err
		return res
	}

	for _, row := range rows {
		flags := ValidateRow(row)
		if len(flags) == 0 {
			continue
		}
		res.flagged++
		for _, f := range flags {
			res.flags[f]++
		}
	}
	if res.flagged > 0 {
		log.Printf("backfill: %s: %d rows flagged %s", job, res.flagged, QualityFlagsToJSON(sortedKeys(res.flags)))
	}

	if b.sink != nil {
		b.sinkMu.Lock()
		err := b.sink(job, rows)
		b.sinkMu.Unlock()
		if err != nil {
			res.err = fmt.Errorf("sink: %w", err)
			return res
		}
	}
	res.rows = len(rows)
	return res
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
