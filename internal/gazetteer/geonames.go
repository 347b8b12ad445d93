package gazetteer

import (
	"bufio"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"exifatlas/internal/catalog"
)

// GeoNames cities500.txt column positions.
const (
	colName       = 1
	colLatitude   = 4
	colLongitude  = 5
	colCountry    = 8
	colAdmin1     = 10
	colPopulation = 14

	minColumns = colCountry + 1
)

const maxLineBytes = 1 << 20

// ParseLine decodes one GeoNames row. It reports false for rows that are too
// short, unnamed, or carry unusable coordinates.
func ParseLine(line string) (catalog.Place, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return catalog.Place{}, false
	}
	cols := strings.Split(line, "\t")
	if len(cols) < minColumns {
		return catalog.Place{}, false
	}
	name := strings.TrimSpace(cols[colName])
	if name == "" {
		return catalog.Place{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(cols[colLatitude]), 64)
	if err != nil || math.IsNaN(lat) || lat < -90 || lat > 90 {
		return catalog.Place{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(cols[colLongitude]), 64)
	if err != nil || math.IsNaN(lon) || lon < -180 || lon > 180 {
		return catalog.Place{}, false
	}
	place := catalog.Place{
		Name:        name,
		CountryCode: strings.ToUpper(strings.TrimSpace(cols[colCountry])),
		Lat:         lat,
		Lon:         lon,
	}
	if len(cols) > colAdmin1 {
		place.AdminCode = strings.TrimSpace(cols[colAdmin1])
	}
	if len(cols) > colPopulation {
		if pop, err := strconv.ParseInt(strings.TrimSpace(cols[colPopulation]), 10, 64); err == nil && pop > 0 {
			place.Population = pop
		}
	}
	return place, true
}

// ReadStats counts rows seen while reading.
type ReadStats struct {
	Lines   int
	Skipped int
}

// Read yields every valid place in r. Rejected rows are counted in stats,
// which is complete once the sequence is exhausted.
func Read(r io.Reader, stats *ReadStats) iter.Seq2[catalog.Place, error] {
	return func(yield func(catalog.Place, error) bool) {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			stats.Lines++
			place, ok := ParseLine(line)
			if !ok {
				stats.Skipped++
				continue
			}
			if !yield(place, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(catalog.Place{}, err)
		}
	}
}
