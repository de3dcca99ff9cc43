package scoring

import (
	"fmt"
	"math"

	"github.com/fortuna/drivescore/internal/store"
)

const (
	binWidth = 10
	fieldMax = 100
)

// Bin places a yard line in one of ten 10-yard buckets labelled "lo-hi".
// Buckets are half-open [lo, hi) except the last, which also holds 100.
// Undefined or off-field values get the empty label.
func Bin(v store.NullFloat) string {
	if !v.Valid || v.Float64 < 0 || v.Float64 > fieldMax {
		return ""
	}
	lo := int(math.Floor(v.Float64/binWidth)) * binWidth
	if lo >= fieldMax {
		lo = fieldMax - binWidth
	}
	return fmt.Sprintf("%d-%d", lo, lo+binWidth)
}

// Bins lists every bucket label in field order.
func Bins() []string {
	labels := make([]string, 0, fieldMax/binWidth)
	for lo := 0; lo < fieldMax; lo += binWidth {
		labels = append(labels, fmt.Sprintf("%d-%d", lo, lo+binWidth))
	}
	return labels
}

// accumulator is a running mean that ignores undefined values.
type accumulator struct {
	sum float64
	n   int
}

// groupMeans is a per-key mean; a key whose values are all undefined has an
// undefined mean, as does a key never seen.
type groupMeans[K comparable] map[K]*accumulator

func (g groupMeans[K]) add(key K, v store.NullFloat) {
	acc, ok := g[key]
	if !ok {
		acc = &accumulator{}
		g[key] = acc
	}
	if v.Valid {
		acc.sum += v.Float64
		acc.n++
	}
}

func (g groupMeans[K]) mean(key K) store.NullFloat {
	acc, ok := g[key]
	if !ok || acc.n == 0 {
		return store.NullFloat{}
	}
	return store.Float(acc.sum / float64(acc.n))
}

// binMeans averages value per bucket, skipping drives with no bucket.
func binMeans(drives []store.Drive, bin func(store.Drive) string, value func(store.Drive) store.NullFloat) groupMeans[string] {
	g := make(groupMeans[string])
	for _, d := range drives {
		b := bin(d)
		if b == "" {
			continue
		}
		g.add(b, value(d))
	}
	return g
}

func (g groupMeans[K]) lookup(key K, empty K) store.NullFloat {
	if key == empty {
		return store.NullFloat{}
	}
	return g.mean(key)
}

type teamSeason struct {
	season int
	team   string
}

func clone(drives []store.Drive) []store.Drive {
	out := make([]store.Drive, len(drives))
	copy(out, drives)
	return out
}
