package evaluation

import (
	"math/rand/v2"
	"sort"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// Fold is one train/test partition of the row indices.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits n rows into NSplits consecutive test folds. The first n %
// NSplits folds get one extra row. With Shuffle the rows are permuted first,
// deterministically for a given Seed.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    uint64
}

// Split returns NSplits folds. Indices inside each fold are ascending.
func (kf KFold) Split(n int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", kf.NSplits)
	}
	if n < kf.NSplits {
		return nil, errors.NewValueError("KFold.Split", "cannot have more folds than samples")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(kf.Seed, kf.Seed))
		r.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize, remainder := n/kf.NSplits, n%kf.NSplits
	current := 0
	for i := range folds {
		size := foldSize
		if i < remainder {
			size++
		}
		inTest := make([]bool, n)
		test := append([]int(nil), indices[current:current+size]...)
		for _, idx := range test {
			inTest[idx] = true
		}
		sort.Ints(test)

		train := make([]int, 0, n-size)
		for j := 0; j < n; j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}
		folds[i] = Fold{Train: train, Test: test}
		current += size
	}
	return folds, nil
}
