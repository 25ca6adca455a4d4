package fmi

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

const lightningQuery = "fmi::observations::lightning::multipointcoverage"

// LightningQuery scopes one lightning feed request.
type LightningQuery struct {
	Center       domain.Coordinate
	RadiusKM     float64
	LookbackDays int
	Timeout      time.Duration
	// Box replaces the square around Center when set.
	Box *domain.BoundingBox
}

// FetchLightning returns the strikes observed inside the box of half side
// RadiusKM around Center since LookbackDays ago, in feed order, each with its
// distance from Center.
func (c *Client) FetchLightning(ctx context.Context, q LightningQuery) ([]domain.StrikeObservation, error) {
	var box domain.BoundingBox
	if q.Box != nil {
		box = *q.Box
	} else {
		var err error
		box, err = domain.ComputeBoundingBox(q.Center, q.RadiusKM)
		if err != nil {
			return nil, fmt.Errorf("lightning bounding box: %w", err)
		}
	}

	now := c.clock.Now()
	params := storedQuery(lightningQuery)
	params.Set("timestep", "3600")
	params.Set("starttime", formatTime(now.Add(-time.Duration(q.LookbackDays)*24*time.Hour)))
	params.Set("bbox", fmt.Sprintf("%s,%s,%s,%s",
		formatFloat(box.LonMin), formatFloat(box.LatMin), formatFloat(box.LonMax), formatFloat(box.LatMax)))

	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	var strikes []domain.StrikeObservation
	err := c.fetch(ctx, feedLightning, params, func(r io.Reader) error {
		p := &strikeParser{
			center: q.Center,
			clock:  c.clock,
			logger: c.logger,
		}
		if c.loopBudget > 0 {
			p.deadline = c.clock.Now().Add(c.loopBudget)
		}
		var err error
		strikes, err = p.parse(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return strikes, nil
}

// strikeParser walks a multipointcoverage response. Positions and tuples are
// two parallel line-oriented text blocks aligned by line index.
type strikeParser struct {
	center   domain.Coordinate
	clock    clockwork.Clock
	logger   *slog.Logger
	deadline time.Time // zero means unbounded

	strikes   []domain.StrikeObservation
	merged    []bool
	truncated bool
}

func (p *strikeParser) parse(r io.Reader) ([]domain.StrikeObservation, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: lightning xml: %w", domain.ErrParse, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "positions":
			var text string
			if err := dec.DecodeElement(&text, &se); err != nil {
				return nil, fmt.Errorf("%w: lightning positions: %w", domain.ErrParse, err)
			}
			if err := p.readPositions(text); err != nil {
				return nil, err
			}
		case "doubleOrNilReasonTupleList":
			var text string
			if err := dec.DecodeElement(&text, &se); err != nil {
				return nil, fmt.Errorf("%w: lightning tuples: %w", domain.ErrParse, err)
			}
			if err := p.mergeTuples(text); err != nil {
				return nil, err
			}
		}
	}

	out := make([]domain.StrikeObservation, 0, len(p.strikes))
	for i, s := range p.strikes {
		if p.merged[i] {
			out = append(out, s)
		}
	}
	return out, nil
}

// readPositions parses "lat lon epoch" lines. Blank lines keep their index.
// The loop budget bounds this walk.
func (p *strikeParser) readPositions(text string) error {
	for idx, line := range blockLines(text) {
		if p.expired() {
			p.logger.Warn("lightning loop budget exhausted, keeping partial positions", "parsed", len(p.strikes))
			p.truncated = true
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			return fmt.Errorf("%w: lightning position line %d: %q", domain.ErrParse, idx, line)
		}
		lat, errLat := strconv.ParseFloat(fields[0], 64)
		lon, errLon := strconv.ParseFloat(fields[1], 64)
		epoch, errEpoch := strconv.ParseFloat(fields[2], 64)
		if err := errors.Join(errLat, errLon, errEpoch); err != nil {
			return fmt.Errorf("%w: lightning position line %d: %w", domain.ErrParse, idx, err)
		}

		coord := domain.Coordinate{Lat: lat, Lon: lon}
		distance, err := domain.GreatCircleDistanceKM(coord, p.center)
		if err != nil {
			p.logger.Info("unable to compute strike distance, using 0",
				"strike", coord.String(),
				"error", err,
			)
			distance = 0
		}

		p.strikes = append(p.strikes, domain.StrikeObservation{
			Coordinate: coord,
			ObservedAt: time.Unix(int64(epoch), 0).UTC(),
			DistanceKM: distance,
			Index:      idx,
		})
		p.merged = append(p.merged, false)
	}
	return nil
}

// mergeTuples parses "strikes peak_current cloud_cover ellipse_major" lines
// into the position with the same line index. A misaligned line stops the
// merge; whatever merged so far is kept.
func (p *strikeParser) mergeTuples(text string) error {
	for idx, line := range blockLines(text) {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if idx >= len(p.strikes) && p.truncated {
			break
		}
		if idx >= len(p.strikes) || p.strikes[idx].Index != idx {
			p.logger.Warn("lightning record mismatch, aborting merge", "line", idx, "positions", len(p.strikes))
			break
		}
		if len(fields) < 4 {
			return fmt.Errorf("%w: lightning tuple line %d: %q", domain.ErrParse, idx, line)
		}

		var vals [4]float64
		for i := range vals {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return fmt.Errorf("%w: lightning tuple line %d: %w", domain.ErrParse, idx, err)
			}
			if math.IsNaN(v) {
				v = 0
			}
			vals[i] = v
		}

		s := &p.strikes[idx]
		s.StrikeCount = int(math.Round(vals[0]))
		s.PeakCurrent = vals[1]
		s.CloudCover = vals[2]
		s.EllipseMajor = vals[3]
		p.merged[idx] = true
	}
	return nil
}

func (p *strikeParser) expired() bool {
	return !p.deadline.IsZero() && p.clock.Now().After(p.deadline)
}

// blockLines splits a coverage text block into lines after trimming leading
// whitespace, so line 0 is the first record.
func blockLines(text string) []string {
	return strings.Split(strings.TrimLeft(text, " \t\r\n"), "\n")
}
