package gwc

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/couchcryptid/wind-yield/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/site.lib")
	require.NoError(t, err)
	return data
}

func TestParse_Fixture(t *testing.T) {
	g, err := Parse(bytes.NewReader(readFixture(t)))
	require.NoError(t, err)

	assert.InDelta(t, 55.5, g.Latitude(), 1e-12)
	assert.InDelta(t, 8.1, g.Longitude(), 1e-12)
	assert.InDelta(t, 12.0, g.Elevation(), 1e-12)
	assert.Equal(t, []float64{0, 0.03}, g.Roughness())
	assert.Equal(t, []float64{10, 50}, g.Heights())
	assert.Equal(t, 4, g.Sectors())

	cell, err := g.Cell(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{A: 7, K: 2.2, Frequency: 25}, cell)

	cell, err = g.Cell(0, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Cell{A: 5.5, K: 1.8, Frequency: 40}, cell)
}

func TestParse_FeedsInterpolation(t *testing.T) {
	g, err := Parse(bytes.NewReader(readFixture(t)))
	require.NoError(t, err)

	sectors, warns, err := g.At(0.03, 50)
	require.NoError(t, err)
	assert.Empty(t, warns)
	for _, s := range sectors {
		assert.InDelta(t, 7.0, s.A, 1e-12)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	g, err := Parse(bytes.NewReader(readFixture(t)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g))

	again, err := Parse(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(g.Spec(), again.Spec()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Malformed(t *testing.T) {
	fixture := string(readFixture(t))
	lines := strings.Split(strings.TrimSpace(fixture), "\n")

	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no coordinates", "header\n" + strings.Join(lines[1:], "\n")},
		{"bad coordinates", strings.Replace(fixture, "55.5,8.1,12.0", "north,east", 1)},
		{"bad counts", strings.Replace(fixture, "2 2 4", "2 2", 1)},
		{"zero sectors", strings.Replace(fixture, "2 2 4", "2 2 0", 1)},
		{"fractional count", strings.Replace(fixture, "2 2 4", "2.5 2 4", 1)},
		{"NaN count", strings.Replace(fixture, "2 2 4", "NaN 2 4", 1)},
		{"infinite count", strings.Replace(fixture, "2 2 4", "2 +Inf 4", 1)},
		{"short roughness", strings.Replace(fixture, "0.0000 0.0300", "0.0300", 1)},
		{"not a number", strings.Replace(fixture, "10.0 50.0", "10.0 fifty", 1)},
		{"truncated", strings.Join(lines[:8], "\n")},
		{"frequencies off", strings.Replace(fixture, "10.00  20.00  30.00  40.00", "10.00  20.00  30.00  10.00", 1)},
		{"descending heights", strings.Replace(fixture, "10.0 50.0", "50.0 10.0", 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			var mErr *domain.MalformedGridError
			assert.ErrorAs(t, err, &mErr)
		})
	}
}
