// Command lightning-probe fetches the FMI lightning feed once and prints the
// query bounding box followed by the ranked, reverse-geocoded strikes. It is a
// debugging aid for checking what the service would publish.
//
// Usage:
//
//	go run ./cmd/lightning-probe -lat 60.1699 -lon 24.9384 -radius 200 -days 1
//	go run ./cmd/lightning-probe -lat 60.1699 -lon 24.9384 -finland -no-geocode
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/fmi-weather-service/internal/adapter/fmi"
	"github.com/couchcryptid/fmi-weather-service/internal/adapter/nominatim"
	"github.com/couchcryptid/fmi-weather-service/internal/domain"
	"github.com/couchcryptid/fmi-weather-service/internal/observability"
	"github.com/couchcryptid/fmi-weather-service/internal/refresh"
)

type options struct {
	center    domain.Coordinate
	radiusKM  float64
	days      int
	limit     int
	finland   bool
	geocode   bool
	baseURL   string
	userAgent string
	timeout   time.Duration
	logLevel  string
}

func main() {
	var opts options
	flag.Float64Var(&opts.center.Lat, "lat", 60.1699, "home latitude")
	flag.Float64Var(&opts.center.Lon, "lon", 24.9384, "home longitude")
	flag.Float64Var(&opts.radiusKM, "radius", 200, "half side of the query box in km")
	flag.IntVar(&opts.days, "days", 1, "lookback in days")
	flag.IntVar(&opts.limit, "limit", domain.DefaultStrikeLimit, "strikes to keep after ranking")
	flag.BoolVar(&opts.finland, "finland", false, "query the whole of Finland instead of the box around home")
	noGeocode := flag.Bool("no-geocode", false, "skip reverse geocoding")
	flag.StringVar(&opts.baseURL, "base-url", fmi.DefaultBaseURL, "FMI WFS endpoint")
	flag.StringVar(&opts.userAgent, "user-agent", "fmi-weather-service/lightning-probe", "Nominatim User-Agent")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "lightning request timeout")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	flag.Parse()
	opts.geocode = !*noGeocode

	os.Exit(run(opts))
}

func run(opts options) int {
	logger := sharedobs.NewLogger(opts.logLevel, "text")
	metrics := observability.NewUnregisteredMetrics()

	var box domain.BoundingBox
	if opts.finland {
		box = domain.FinlandBoundingBox()
	} else {
		var err error
		box, err = domain.ComputeBoundingBox(opts.center, opts.radiusKM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bounding box: %v\n", err)
			return 2
		}
	}
	fmt.Printf("center   %s\n", opts.center)
	fmt.Printf("bbox     lat %.6f..%.6f  lon %.6f..%.6f\n", box.LatMin, box.LatMax, box.LonMin, box.LonMax)

	var geocoder domain.Geocoder
	if opts.geocode {
		geocoder = nominatim.NewClient(nominatim.Config{UserAgent: opts.userAgent, Timeout: 5 * time.Second}, metrics, logger)
	}

	client := fmi.NewClient(opts.baseURL, opts.timeout, metrics, logger)
	source := &boxedSource{client: client}
	if opts.finland {
		source.box = &box
	}
	proc := refresh.NewLightningProcessor(source, geocoder, refresh.LightningOptions{
		Limit:          opts.limit,
		FeedTimeout:    opts.timeout,
		GeocodeTimeout: 5 * time.Second,
		Location:       time.Local,
	}, metrics, logger)

	strikes, err := proc.FetchAndRank(context.Background(), opts.center, opts.radiusKM, opts.days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lightning: %v\n", err)
		return 1
	}

	fmt.Printf("strikes  %d\n\n", len(strikes))
	if len(strikes) == 0 {
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDISTANCE KM\tSTRIKES\tPEAK kA\tCLOUD\tELLIPSE\tPLACE")
	for _, s := range strikes {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%.1f\t%.0f\t%.1f\t%s\n",
			s.Time, s.DistanceKM, s.StrikeCount, s.PeakCurrent, s.CloudCover, s.EllipseMajor, s.Place)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		return 1
	}
	return 0
}

// boxedSource pins the query box when probing a fixed region.
type boxedSource struct {
	client *fmi.Client
	box    *domain.BoundingBox
}

func (b *boxedSource) FetchLightning(ctx context.Context, q fmi.LightningQuery) ([]domain.StrikeObservation, error) {
	q.Box = b.box
	return b.client.FetchLightning(ctx, q)
}
