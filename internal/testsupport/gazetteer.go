package testsupport

import (
	"fmt"
	"strings"
	"testing"
)

// GazetteerPlace is one row for a GeoNames-format fixture.
type GazetteerPlace struct {
	Name       string
	Lat        float64
	Lon        float64
	Country    string
	Admin1     string
	Population int64
}

// Cincinnati is the reference place used across pipeline tests.
var Cincinnati = GazetteerPlace{Name: "Cincinnati", Lat: 39.12711, Lon: -84.51439, Country: "US", Admin1: "OH", Population: 296943}

// GeoNamesLine renders p in the 19-column cities500.txt layout.
func GeoNamesLine(id int, p GazetteerPlace) string {
	cols := make([]string, 19)
	cols[0] = fmt.Sprint(id)
	cols[1] = p.Name
	cols[2] = p.Name
	cols[4] = fmt.Sprintf("%.5f", p.Lat)
	cols[5] = fmt.Sprintf("%.5f", p.Lon)
	cols[6] = "P"
	cols[7] = "PPL"
	cols[8] = p.Country
	cols[10] = p.Admin1
	cols[14] = fmt.Sprint(p.Population)
	cols[17] = "UTC"
	cols[18] = "2024-01-01"
	return strings.Join(cols, "\t")
}

// WriteGazetteer writes places to path in GeoNames format.
func WriteGazetteer(t testing.TB, path string, places ...GazetteerPlace) {
	t.Helper()
	var b strings.Builder
	for i, p := range places {
		b.WriteString(GeoNamesLine(i+1, p))
		b.WriteByte('\n')
	}
	WriteBytes(t, path, []byte(b.String()))
}
