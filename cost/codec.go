package cost

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnusable marks a serialized parameter set that cannot be decoded into valid Params
var ErrUnusable = errors.New("unusable parameters")

const (
	codecVersion  = "v1"
	pairSeparator = ";"
	kvSeparator   = "="
)

// Encode serializes p into its compact string form
// Floats use the shortest representation that parses back to the same bits
func Encode(p Params) string {
	var sb strings.Builder
	sb.WriteString(codecVersion)
	sb.WriteByte(':')
	for i, v := range p.genes() {
		if i > 0 {
			sb.WriteString(pairSeparator)
		}
		sb.WriteString(Bounds[i].Name)
		sb.WriteString(kvSeparator)
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return sb.String()
}

// Decode parses the string form produced by Encode
// Every failure wraps ErrUnusable
func Decode(s string) (Params, error) {
	version, body, found := strings.Cut(s, ":")
	if !found {
		return Params{}, fmt.Errorf("%w: missing version prefix", ErrUnusable)
	}
	if version != codecVersion {
		return Params{}, fmt.Errorf("%w: unsupported version %q", ErrUnusable, version)
	}

	index := make(map[string]int, len(Bounds))
	for i, b := range Bounds {
		index[b.Name] = i
	}

	genes := make([]float64, len(Bounds))
	seen := make([]bool, len(Bounds))
	for _, pair := range strings.Split(body, pairSeparator) {
		name, raw, ok := strings.Cut(pair, kvSeparator)
		if !ok {
			return Params{}, fmt.Errorf("%w: malformed field %q", ErrUnusable, pair)
		}
		i, known := index[name]
		if !known {
			return Params{}, fmt.Errorf("%w: unknown field %q", ErrUnusable, name)
		}
		if seen[i] {
			return Params{}, fmt.Errorf("%w: duplicate field %q", ErrUnusable, name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Params{}, fmt.Errorf("%w: field %s: %v", ErrUnusable, name, err)
		}
		genes[i] = v
		seen[i] = true
	}

	for i, ok := range seen {
		if !ok {
			return Params{}, fmt.Errorf("%w: missing field %q", ErrUnusable, Bounds[i].Name)
		}
	}

	p := fromGenes(genes)
	if !p.Viable() {
		return Params{}, fmt.Errorf("%w: values outside valid ranges", ErrUnusable)
	}
	return p, nil
}

// GeneCodec maps Params to and from a float genome in Bounds order
type GeneCodec struct{}

func (GeneCodec) Encode(p Params) []float64 {
	return p.genes()
}

func (GeneCodec) Decode(g []float64) (Params, error) {
	if len(g) != len(Bounds) {
		return Params{}, fmt.Errorf("%w: genome has %d genes, want %d", ErrUnusable, len(g), len(Bounds))
	}
	p := fromGenes(g)
	if !p.InBounds() {
		return Params{}, fmt.Errorf("%w: genome outside valid ranges", ErrUnusable)
	}
	return p, nil
}

func (GeneCodec) Clamp(g []float64) []float64 {
	return perturbator(0).Clamp(g)
}
