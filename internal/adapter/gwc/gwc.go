// Package gwc reads and writes generalized wind climate files in the text
// layout served by the Global Wind Atlas (".lib" files).
//
// Layout, one record per line:
//
//	<free text><coordinates>lat,lon,elevation</coordinates>
//	nRoughness nHeights nSectors
//	roughness lengths (m)
//	heights (m)
//	then for each roughness level:
//	  sector frequencies (%)
//	  for each height: A values (m/s), then k values
package gwc

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/wind-yield/internal/domain"
)

var coordinatesPattern = regexp.MustCompile(`<coordinates>(.*?)</coordinates>`)

// Parse decodes a GWC document. Structural problems are reported as
// *domain.MalformedGridError.
func Parse(r io.Reader) (*domain.ClimateGrid, error) {
	spec, err := ParseSpec(r)
	if err != nil {
		return nil, err
	}
	return domain.NewClimateGrid(spec)
}

// ParseSpec decodes a GWC document into its raw spec without validating
// the values.
func ParseSpec(r io.Reader) (domain.GridSpec, error) {
	lines, err := readLines(r)
	if err != nil {
		return domain.GridSpec{}, fmt.Errorf("read gwc: %w", err)
	}
	if len(lines) == 0 {
		return domain.GridSpec{}, malformed("empty document")
	}
	p := &parser{lines: lines}

	header := p.next()
	m := coordinatesPattern.FindStringSubmatch(header)
	if m == nil {
		return domain.GridSpec{}, malformed("line 1: missing <coordinates> element")
	}
	coords, err := floats(m[1], ",")
	if err != nil || len(coords) < 2 {
		return domain.GridSpec{}, malformed("line 1: coordinates %q are not lat,lon[,elevation]", m[1])
	}

	var spec domain.GridSpec
	spec.Latitude, spec.Longitude = coords[0], coords[1]
	if len(coords) > 2 {
		spec.Elevation = coords[2]
	}

	counts, err := p.row(3)
	if err != nil {
		return domain.GridSpec{}, err
	}
	for _, c := range counts {
		if c != math.Trunc(c) || math.IsInf(c, 0) {
			return domain.GridSpec{}, malformed("line 2: counts %v must be whole numbers", counts)
		}
	}
	nr, nh, ns := int(counts[0]), int(counts[1]), int(counts[2])
	if nr <= 0 || nh <= 0 || ns <= 0 {
		return domain.GridSpec{}, malformed("line 2: counts %v must be positive", counts)
	}
	spec.Sectors = ns

	if spec.Roughness, err = p.row(nr); err != nil {
		return domain.GridSpec{}, err
	}
	if spec.Heights, err = p.row(nh); err != nil {
		return domain.GridSpec{}, err
	}

	spec.A = make([][][]float64, nr)
	spec.K = make([][][]float64, nr)
	spec.Frequency = make([][]float64, nr)
	for r := range nr {
		if spec.Frequency[r], err = p.row(ns); err != nil {
			return domain.GridSpec{}, err
		}
		spec.A[r] = make([][]float64, nh)
		spec.K[r] = make([][]float64, nh)
		for h := range nh {
			if spec.A[r][h], err = p.row(ns); err != nil {
				return domain.GridSpec{}, err
			}
			if spec.K[r][h], err = p.row(ns); err != nil {
				return domain.GridSpec{}, err
			}
		}
	}
	return spec, nil
}

// Encode writes g in GWC layout. Encode followed by Parse yields an equal grid.
func Encode(w io.Writer, g *domain.ClimateGrid) error {
	spec := g.Spec()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "wind-yield GWC <coordinates>%s,%s,%s</coordinates>\n",
		format(spec.Latitude), format(spec.Longitude), format(spec.Elevation))
	fmt.Fprintf(bw, "%d %d %d\n", len(spec.Roughness), len(spec.Heights), spec.Sectors)
	writeRow(bw, spec.Roughness)
	writeRow(bw, spec.Heights)
	for r := range spec.Roughness {
		writeRow(bw, spec.Frequency[r])
		for h := range spec.Heights {
			writeRow(bw, spec.A[r][h])
			writeRow(bw, spec.K[r][h])
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write gwc: %w", err)
	}
	return nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) next() string {
	line := p.lines[p.pos]
	p.pos++
	return line
}

// row reads the next line as exactly n numbers.
func (p *parser) row(n int) ([]float64, error) {
	if p.pos >= len(p.lines) {
		return nil, malformed("line %d: unexpected end of file", p.pos+1)
	}
	lineNo := p.pos + 1
	values, err := floats(p.next(), "")
	if err != nil {
		return nil, malformed("line %d: %v", lineNo, err)
	}
	if len(values) != n {
		return nil, malformed("line %d: want %d values, got %d", lineNo, n, len(values))
	}
	return values, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// floats splits s on sep (whitespace when empty) and parses each field.
func floats(s, sep string) ([]float64, error) {
	var fields []string
	if sep == "" {
		fields = strings.Fields(s)
	} else {
		fields = strings.Split(s, sep)
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out[i] = v
	}
	return out, nil
}

func writeRow(w io.Writer, values []float64) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = format(v)
	}
	fmt.Fprintln(w, strings.Join(parts, " "))
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func malformed(msg string, args ...any) error {
	return &domain.MalformedGridError{Reason: fmt.Sprintf(msg, args...)}
}
