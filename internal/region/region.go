// Package region merges overlapping homology hits into maximal
// non-overlapping putative intein regions per query.
package region

import (
	"fmt"
	"sort"

	"github.com/protlab/inteinscan/internal/hits"
)

// Region is a maximal contiguous interval [QStart, QEnd] on a query,
// 1-based inclusive. ID is the zero-based insertion order.
type Region struct {
	ID     int
	QStart int
	QEnd   int
}

// Len returns the region length in residues.
func (r Region) Len() int {
	return r.QEnd - r.QStart + 1
}

// Build merges the hits for one query into an ordered region list.
//
// Hits are scanned ascending by qstart (ties by qend). A hit starting exactly
// at the previous region's end opens a new region; touching intervals do not
// merge. A hit with qstart == qend is rejected.
func Build(hs []*hits.Hit) ([]Region, error) {
	sorted := make([]*hits.Hit, len(hs))
	copy(sorted, hs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].QStart != sorted[j].QStart {
			return sorted[i].QStart < sorted[j].QStart
		}
		return sorted[i].QEnd < sorted[j].QEnd
	})

	var regions []Region
	for _, h := range sorted {
		if h.QStart == h.QEnd {
			return nil, fmt.Errorf("degenerate hit %s vs %s: qstart == qend == %d", h.Query, h.Target, h.QStart)
		}

		if len(regions) == 0 {
			regions = append(regions, Region{ID: 0, QStart: h.QStart, QEnd: h.QEnd})
			continue
		}

		last := &regions[len(regions)-1]
		switch {
		case h.QStart >= last.QEnd:
			regions = append(regions, Region{ID: len(regions), QStart: h.QStart, QEnd: h.QEnd})
		case h.QEnd > last.QEnd:
			last.QEnd = h.QEnd
		}
		// otherwise contained, nothing to do
	}

	return regions, nil
}

// BuildAll builds regions for every query in the grouped hit map.
func BuildAll(grouped map[string][]*hits.Hit) (map[string][]Region, error) {
	out := make(map[string][]Region, len(grouped))
	for query, hs := range grouped {
		regions, err := Build(hs)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", query, err)
		}
		out[query] = regions
	}
	return out, nil
}

// Enclosing returns the region whose span contains the given query position,
// or false if none does.
func Enclosing(regions []Region, pos float64) (Region, bool) {
	for _, r := range regions {
		if float64(r.QStart) <= pos && pos <= float64(r.QEnd) {
			return r, true
		}
	}
	return Region{}, false
}

// Covering returns true if any region fully covers [start, end].
func Covering(regions []Region, start, end int) bool {
	for _, r := range regions {
		if start >= r.QStart && end <= r.QEnd {
			return true
		}
	}
	return false
}
