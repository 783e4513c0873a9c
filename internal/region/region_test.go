package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protlab/inteinscan/internal/hits"
)

func makeHits(spans ...[2]int) []*hits.Hit {
	hs := make([]*hits.Hit, len(spans))
	for i, s := range spans {
		hs[i] = &hits.Hit{Query: "q1", Target: "t1", QStart: s[0], QEnd: s[1]}
	}
	return hs
}

func TestBuild_MergesOverlapping(t *testing.T) {
	regions, err := Build(makeHits([2]int{10, 50}, [2]int{40, 80}, [2]int{100, 120}))
	require.NoError(t, err)

	require.Len(t, regions, 2)
	assert.Equal(t, Region{ID: 0, QStart: 10, QEnd: 80}, regions[0])
	assert.Equal(t, Region{ID: 1, QStart: 100, QEnd: 120}, regions[1])
}

func TestBuild_TouchingIntervalsDoNotMerge(t *testing.T) {
	regions, err := Build(makeHits([2]int{10, 50}, [2]int{50, 90}))
	require.NoError(t, err)

	require.Len(t, regions, 2)
	assert.Equal(t, Region{ID: 0, QStart: 10, QEnd: 50}, regions[0])
	assert.Equal(t, Region{ID: 1, QStart: 50, QEnd: 90}, regions[1])
}

func TestBuild_ContainedHitIgnored(t *testing.T) {
	regions, err := Build(makeHits([2]int{10, 80}, [2]int{20, 30}))
	require.NoError(t, err)

	require.Len(t, regions, 1)
	assert.Equal(t, Region{ID: 0, QStart: 10, QEnd: 80}, regions[0])
}

func TestBuild_UnsortedInput(t *testing.T) {
	regions, err := Build(makeHits([2]int{100, 120}, [2]int{40, 80}, [2]int{10, 50}))
	require.NoError(t, err)

	require.Len(t, regions, 2)
	assert.Equal(t, Region{ID: 0, QStart: 10, QEnd: 80}, regions[0])
	assert.Equal(t, Region{ID: 1, QStart: 100, QEnd: 120}, regions[1])
}

func TestBuild_DegenerateHitFails(t *testing.T) {
	_, err := Build(makeHits([2]int{10, 10}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate hit")
}

func TestBuild_Empty(t *testing.T) {
	regions, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, regions)
}

// Running the builder on its own output yields the same regions.
func TestBuild_Idempotent(t *testing.T) {
	regions, err := Build(makeHits([2]int{10, 50}, [2]int{40, 80}, [2]int{50, 90}, [2]int{100, 120}))
	require.NoError(t, err)

	asHits := make([]*hits.Hit, len(regions))
	for i, r := range regions {
		asHits[i] = &hits.Hit{Query: "q1", QStart: r.QStart, QEnd: r.QEnd}
	}

	again, err := Build(asHits)
	require.NoError(t, err)
	assert.Equal(t, regions, again)
}

func TestBuild_RegionsNonOverlappingAndSorted(t *testing.T) {
	regions, err := Build(makeHits(
		[2]int{5, 25}, [2]int{30, 31}, [2]int{20, 28}, [2]int{31, 60}, [2]int{100, 130}, [2]int{90, 110},
	))
	require.NoError(t, err)

	for i := 1; i < len(regions); i++ {
		assert.Less(t, regions[i-1].QEnd, regions[i].QStart,
			"regions %d and %d overlap or touch out of order", i-1, i)
		assert.Equal(t, i, regions[i].ID)
	}
}

func TestBuildAll(t *testing.T) {
	grouped := map[string][]*hits.Hit{
		"q1": makeHits([2]int{10, 50}, [2]int{40, 80}),
		"q2": makeHits([2]int{1, 30}),
	}
	regions, err := BuildAll(grouped)
	require.NoError(t, err)

	assert.Len(t, regions["q1"], 1)
	assert.Len(t, regions["q2"], 1)
}

func TestBuildAll_PropagatesQueryInError(t *testing.T) {
	grouped := map[string][]*hits.Hit{
		"bad_query": makeHits([2]int{7, 7}),
	}
	_, err := BuildAll(grouped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad_query")
}

func TestEnclosing(t *testing.T) {
	regions := []Region{
		{ID: 0, QStart: 10, QEnd: 80},
		{ID: 1, QStart: 100, QEnd: 120},
	}

	r, ok := Enclosing(regions, 45.5)
	require.True(t, ok)
	assert.Equal(t, 0, r.ID)

	r, ok = Enclosing(regions, 100)
	require.True(t, ok)
	assert.Equal(t, 1, r.ID)

	_, ok = Enclosing(regions, 90)
	assert.False(t, ok)
}

func TestCovering(t *testing.T) {
	regions := []Region{{ID: 0, QStart: 10, QEnd: 80}}

	assert.True(t, Covering(regions, 10, 80))
	assert.True(t, Covering(regions, 20, 40))
	assert.False(t, Covering(regions, 9, 40))
	assert.False(t, Covering(regions, 20, 81))
}

func TestRegionLen(t *testing.T) {
	assert.Equal(t, 71, Region{QStart: 10, QEnd: 80}.Len())
	assert.Equal(t, 1, Region{QStart: 5, QEnd: 5}.Len())
}
