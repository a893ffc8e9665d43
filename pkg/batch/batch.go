// Package batch produces shuffled index batches for mini-batch training
// loops. Randomness always comes from an explicit *rand.Rand so runs are
// reproducible without global seeding.
package batch

import (
	"iter"
	"math/rand/v2"

	"github.com/datazip-inc/dskit/types"
)

// NewRand returns a deterministic generator for seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IndexBatches shuffles 0..n-1 and yields it in consecutive batches of
// batchSize. The final short batch is dropped when discardRemain is set.
func IndexBatches(rng *rand.Rand, n, batchSize int, discardRemain bool) (iter.Seq[[]int], error) {
	if n < 0 {
		return nil, types.Preconditionf("negative sample count %d", n)
	}
	if batchSize <= 0 {
		return nil, types.Preconditionf("batch size must be positive, got %d", batchSize)
	}

	indices := rng.Perm(n)
	return func(yield func([]int) bool) {
		for start := 0; start < n; start += batchSize {
			end := min(start+batchSize, n)
			if discardRemain && end-start < batchSize {
				return
			}
			if !yield(indices[start:end:end]) {
				return
			}
		}
	}, nil
}

// PairedIndexBatches draws batches from two index sets of different sizes
// together. Both sets are shuffled and padded by resampling their own
// indices up to the smallest multiple of batchSize covering the larger set,
// so every batch pairs batchSize source indices with batchSize target ones.
func PairedIndexBatches(rng *rand.Rand, sourceN, targetN, batchSize int) (iter.Seq2[[]int, []int], error) {
	if sourceN <= 0 || targetN <= 0 {
		return nil, types.Preconditionf("sample counts must be positive, got %d and %d", sourceN, targetN)
	}
	if batchSize <= 0 {
		return nil, types.Preconditionf("batch size must be positive, got %d", batchSize)
	}

	union := (max(sourceN, targetN) + batchSize - 1) / batchSize * batchSize
	source := padded(rng, sourceN, union)
	target := padded(rng, targetN, union)

	order, err := IndexBatches(rng, union, batchSize, false)
	if err != nil {
		return nil, err
	}

	return func(yield func([]int, []int) bool) {
		for positions := range order {
			sourceBatch := make([]int, len(positions))
			targetBatch := make([]int, len(positions))
			for i, pos := range positions {
				sourceBatch[i] = source[pos]
				targetBatch[i] = target[pos]
			}
			if !yield(sourceBatch, targetBatch) {
				return
			}
		}
	}, nil
}

// padded returns a permutation of 0..n-1 extended to size by drawing, with
// replacement, from that permutation
func padded(rng *rand.Rand, n, size int) []int {
	indices := rng.Perm(n)
	for len(indices) < size {
		indices = append(indices, indices[rng.IntN(n)])
	}
	return indices
}
