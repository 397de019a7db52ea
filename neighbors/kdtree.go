package neighbors

import (
	"gonum.org/v1/gonum/spatial/kdtree"
)

// sample is a training row together with its target.
type sample struct {
	x []float64
	y float64
}

// Compare implements kdtree.Comparable.
func (s sample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return s.x[d] - c.(sample).x[d]
}

// Dims implements kdtree.Comparable.
func (s sample) Dims() int { return len(s.x) }

// Distance returns the squared Euclidean distance.
func (s sample) Distance(c kdtree.Comparable) float64 {
	q := c.(sample).x
	var sum float64
	for i, v := range s.x {
		d := v - q[i]
		sum += d * d
	}
	return sum
}

type samples []sample

func (s samples) Index(i int) kdtree.Comparable         { return s[i] }
func (s samples) Len() int                              { return len(s) }
func (s samples) Pivot(d kdtree.Dim) int                { return plane{dim: d, samples: s}.Pivot() }
func (s samples) Slice(start, end int) kdtree.Interface { return s[start:end] }

// plane sorts samples along one dimension.
type plane struct {
	dim     kdtree.Dim
	samples samples
}

func (p plane) Less(i, j int) bool {
	return p.samples[i].x[p.dim] < p.samples[j].x[p.dim]
}
func (p plane) Len() int { return len(p.samples) }
func (p plane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{dim: p.dim, samples: p.samples[start:end]}
}
func (p plane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}
