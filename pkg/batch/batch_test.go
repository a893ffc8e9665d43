package batch

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/dskit/types"
)

func TestIndexBatches(t *testing.T) {
	tests := []struct {
		name          string
		n             int
		batchSize     int
		discardRemain bool
		sizes         []int
	}{
		{name: "exact", n: 6, batchSize: 3, sizes: []int{3, 3}},
		{name: "remainder kept", n: 7, batchSize: 3, sizes: []int{3, 3, 1}},
		{name: "remainder dropped", n: 7, batchSize: 3, discardRemain: true, sizes: []int{3, 3}},
		{name: "batch larger than n", n: 2, batchSize: 5, sizes: []int{2}},
		{name: "batch larger than n dropped", n: 2, batchSize: 5, discardRemain: true},
		{name: "empty", n: 0, batchSize: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches, err := IndexBatches(NewRand(7), tt.n, tt.batchSize, tt.discardRemain)
			require.NoError(t, err)

			var sizes []int
			var all []int
			for b := range batches {
				sizes = append(sizes, len(b))
				all = append(all, b...)
			}
			assert.Equal(t, tt.sizes, sizes)

			// no index repeats and all are in range
			slices.Sort(all)
			assert.Equal(t, slices.Compact(slices.Clone(all)), all)
			for _, idx := range all {
				assert.True(t, idx >= 0 && idx < tt.n)
			}
			if !tt.discardRemain {
				assert.Len(t, all, tt.n)
			}
		})
	}
}

func TestIndexBatches_Deterministic(t *testing.T) {
	collect := func(seed uint64) [][]int {
		batches, err := IndexBatches(NewRand(seed), 20, 6, false)
		require.NoError(t, err)
		return slices.Collect(batches)
	}

	assert.Equal(t, collect(42), collect(42))
	assert.NotEqual(t, collect(42), collect(43))
}

func TestIndexBatches_Preconditions(t *testing.T) {
	_, err := IndexBatches(NewRand(1), -1, 2, false)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	_, err = IndexBatches(NewRand(1), 4, 0, false)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}

func TestPairedIndexBatches(t *testing.T) {
	batches, err := PairedIndexBatches(NewRand(3), 10, 4, 4)
	require.NoError(t, err)

	var sources, targets []int
	count := 0
	for source, target := range batches {
		count++
		assert.Len(t, source, 4)
		assert.Len(t, target, 4)
		sources = append(sources, source...)
		targets = append(targets, target...)
	}

	// ceil(10/4)*4 = 12 positions in 3 batches
	assert.Equal(t, 3, count)
	assert.Len(t, sources, 12)

	// every source index appears at least once; padding only reuses valid indices
	for i := 0; i < 10; i++ {
		assert.Contains(t, sources, i)
	}
	for i := 0; i < 4; i++ {
		assert.Contains(t, targets, i)
	}
	for _, idx := range targets {
		assert.True(t, idx >= 0 && idx < 4)
	}
}

func TestPairedIndexBatches_Preconditions(t *testing.T) {
	_, err := PairedIndexBatches(NewRand(1), 0, 4, 2)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	_, err = PairedIndexBatches(NewRand(1), 4, 4, -2)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}
