package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"

	"github.com/lox/jmaetrn/internal/httputil"
	"github.com/lox/jmaetrn/internal/jma"
)

type Globals struct {
	BaseURL         string        `name:"base-url" env:"JMA_BASE_URL" default:"https://www.data.jma.go.jp/obd/stats/etrn" help:"Root of the historical observation pages."`
	Timeout         time.Duration `env:"JMA_TIMEOUT" default:"30s" help:"Per-request timeout."`
	UserAgent       string        `name:"user-agent" env:"JMA_USER_AGENT" default:"jmaetrn/1.0" help:"User-Agent header sent with every request."`
	StationCacheTTL time.Duration `name:"station-cache-ttl" env:"JMA_STATION_CACHE_TTL" default:"10m" help:"How long station lists are cached (0 disables)."`
	MetricsAddr     string        `name:"metrics-addr" env:"METRICS_ADDR" help:"Serve Prometheus metrics on this address (e.g. :9090)."`
}

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`

	Globals

	Prefectures PrefecturesCmd `cmd:"" help:"List every region."`
	Stations    StationsCmd    `cmd:"" help:"List the stations of a region."`
	Station     StationCmd     `cmd:"" help:"Show one station."`
	Hourly      HourlyCmd      `cmd:"" help:"Print the hourly table of one station-day."`
	Tenmin      TenMinCmd      `cmd:"" help:"Print the ten-minute table of one station-day."`
	Backfill    BackfillCmd    `cmd:"" help:"Fetch many station-days through a worker pool."`
}

// App is what every command runs against.
type App struct {
	Client *jma.Client
	Out    *json.Encoder
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("jmaetrn"),
		kong.Description("Retrieve historical surface observations from the Japan Meteorological Agency."),
		kong.UsageOnError(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cli.MetricsAddr != "" {
		srv := startMetricsServer(cli.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	fetcher := httputil.NewFetcher(httputil.NewClient(cli.Timeout), cli.UserAgent)
	client := jma.NewClient(fetcher,
		jma.WithBaseURL(cli.BaseURL),
		jma.WithStationCache(cli.StationCacheTTL, nil),
	)
	defer client.Close()

	app := &App{Client: client, Out: json.NewEncoder(os.Stdout)}
	kctx.BindTo(ctx, (*context.Context)(nil))
	if err := kctx.Run(app); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("jmaetrn: interrupted")
			os.Exit(130)
		}
		log.Fatalf("jmaetrn: %v", err)
	}
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("jmaetrn: serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("jmaetrn: metrics server: %v", err)
		}
	}()
	return srv
}
