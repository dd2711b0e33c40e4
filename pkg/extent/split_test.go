package extent

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// requirePartition asserts the split invariant: pieces are pairwise disjoint
// and their union covers e exactly once, in element order.
func requirePartition(t *testing.T, e Extent, pieces []Extent) {
	t.Helper()

	covered := 0
	visits := make(map[string]int)
	for _, p := range pieces {
		require.True(t, e.Contains(p), "piece %v escapes %v", p, e)
		covered += p.Elements()
		forEachIndex(p, func(idx []int) {
			visits[fmt.Sprint(idx)]++
		})
	}
	require.Equal(t, e.Elements(), covered)
	for idx, n := range visits {
		require.Equal(t, 1, n, "index %s visited %d times", idx, n)
	}

	// Pieces concatenate contiguously in flat element order.
	next := 0
	for _, p := range pieces {
		require.Equal(t, next, e.Offset(p.Start), "piece %v out of order", p)
		next += p.Elements()
	}
}

func forEachIndex(e Extent, fn func(idx []int)) {
	if e.IsEmpty() {
		return
	}
	idx := append([]int(nil), e.Start...)
	for {
		fn(idx)
		d := 0
		for ; d < e.Dims(); d++ {
			idx[d]++
			if idx[d] < e.End(d) {
				break
			}
			idx[d] = e.Start[d]
		}
		if d == e.Dims() {
			return
		}
	}
}

func TestSplitPartitionInvariant(t *testing.T) {
	extents := map[string]Extent{
		`line`:        Of(17),
		`plane`:       Of(5, 3),
		`volume`:      New([]int{-2, 1, 0}, []int{4, 4, 4}),
		`tall_thin`:   Of(1, 1, 9),
		`flat_square`: Of(8, 8, 1),
		`hyper`:       Of(3, 2, 2, 2),
	}

	for name, e := range extents {
		for _, n := range []int{1, 2, 3, 4, 5, 7, 16, 1000} {
			t.Run(fmt.Sprintf("%s_n%d", name, n), func(t *testing.T) {
				pieces := Split(e, n)
				require.LessOrEqual(t, len(pieces), max(n, 1))
				require.LessOrEqual(t, len(pieces), e.Elements())
				if n <= e.Elements() {
					require.Len(t, pieces, n)
				}
				requirePartition(t, e, pieces)
			})
		}
	}
}

func TestSplitSlowestAxisFirst(t *testing.T) {
	// A (4,4,4) volume split into 2 and 4 pieces cuts only the slowest axis.
	e := Of(4, 4, 4)

	pieces := Split(e, 2)
	expected := []Extent{
		New([]int{0, 0, 0}, []int{4, 4, 2}),
		New([]int{0, 0, 2}, []int{4, 4, 2}),
	}
	if diff := cmp.Diff(expected, pieces); diff != "" {
		t.Fatalf("unexpected 2-way split (-want +got):\n%s", diff)
	}

	pieces = Split(e, 4)
	require.Len(t, pieces, 4)
	for i, p := range pieces {
		require.True(t, p.Equal(New([]int{0, 0, i}, []int{4, 4, 1})), "piece %d: %v", i, p)
	}
}

func TestSplitRecursesIntoInnerAxes(t *testing.T) {
	// 8 pieces from a (4,2) plane: the slow axis holds only 2, so each of
	// its unit slices is further divided along the fast axis.
	pieces := Split(Of(4, 2), 8)
	require.Len(t, pieces, 8)
	requirePartition(t, Of(4, 2), pieces)
	for _, p := range pieces {
		require.Equal(t, 1, p.Elements())
	}
}

func TestSplitClampsToElementCount(t *testing.T) {
	pieces := Split(Of(3), 100)
	require.Len(t, pieces, 3)
	requirePartition(t, Of(3), pieces)
}

func TestSplitDegenerate(t *testing.T) {
	var testcases = map[string]struct {
		ext Extent
		n   int
	}{
		`n_one`:      {ext: Of(4, 4), n: 1},
		`n_zero`:     {ext: Of(4, 4), n: 0},
		`n_negative`: {ext: Of(4, 4), n: -3},
		`empty`:      {ext: Of(0, 4), n: 5},
		`no_axes`:    {ext: Extent{}, n: 5},
	}

	for name, tc := range testcases {
		t.Run(name, func(t *testing.T) {
			pieces := Split(tc.ext, tc.n)
			require.Len(t, pieces, 1)
			require.True(t, pieces[0].Equal(tc.ext))
		})
	}
}
