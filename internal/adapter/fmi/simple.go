package fmi

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/fmi-weather-service/internal/domain"
)

// featureCollection is the "simple" WFS response: one member per
// (location, time, parameter) triple.
type featureCollection struct {
	Members []member `xml:"member"`
}

type member struct {
	Element simpleElement `xml:"BsWfsElement"`
}

type simpleElement struct {
	Time           string `xml:"Time"`
	ParameterName  string `xml:"ParameterName"`
	ParameterValue string `xml:"ParameterValue"`
}

// simpleRecord is one decoded member.
type simpleRecord struct {
	Time  time.Time
	Name  string
	Value string
}

// decodeSimple reads a simple-format response. Members with an unparseable
// time are dropped and counted.
func decodeSimple(r io.Reader) ([]simpleRecord, int, error) {
	var fc featureCollection
	if err := xml.NewDecoder(r).Decode(&fc); err != nil {
		return nil, 0, fmt.Errorf("%w: decode wfs response: %w", domain.ErrParse, err)
	}

	records := make([]simpleRecord, 0, len(fc.Members))
	skipped := 0
	for _, m := range fc.Members {
		el := m.Element
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(el.Time))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, simpleRecord{
			Time:  t,
			Name:  strings.TrimSpace(el.ParameterName),
			Value: strings.TrimSpace(el.ParameterValue),
		})
	}
	return records, skipped, nil
}

// parseValue returns nil for FMI's "NaN" and for anything unparseable.
func parseValue(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
