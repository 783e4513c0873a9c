package criteria

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/protlab/inteinscan/internal/region"
)

// Refinement length gate, derived from the curated intein length range
// 134-608 with a 20-residue margin on each side.
const (
	RegionMinLen = 114
	RegionMaxLen = 628
)

// RefinedRegion is the final per-(query, region) record. When no refinement
// applies, the coarse interval is kept and Target is empty.
type RefinedRegion struct {
	Query    string
	RegionID int
	Start    int
	End      int
	Length   int
	Target   string
	EValue   float64
}

// Refined reports whether boundary refinement was applied.
func (r *RefinedRegion) Refined() bool {
	return r.Target != ""
}

// Refine rewrites region boundaries using single-target evidence. A region
// is refined when its condensed verdict carries a single target whose evalue
// is at or below maxEValue. With useLength set, refined and coarse records
// whose length falls outside [RegionMinLen, RegionMaxLen] are dropped.
// Output is ordered by query ascending, then region id.
func Refine(regions map[string][]region.Region, checks []*RegionCheck, maxEValue float64, useLength bool) ([]*RefinedRegion, error) {
	byKey := make(map[string]map[int]*RegionCheck, len(checks))
	for _, rc := range checks {
		if byKey[rc.Query] == nil {
			byKey[rc.Query] = make(map[int]*RegionCheck)
		}
		byKey[rc.Query][rc.RegionID] = rc
	}

	queries := make([]string, 0, len(regions))
	for q := range regions {
		queries = append(queries, q)
	}
	sort.Strings(queries)

	var out []*RefinedRegion
	for _, q := range queries {
		for _, r := range regions[q] {
			refined := &RefinedRegion{
				Query:    q,
				RegionID: r.ID,
				Start:    r.QStart,
				End:      r.QEnd,
				Length:   r.Len(),
			}

			if rc := byKey[q][r.ID]; rc != nil && rc.Single != nil && rc.Single.EValue <= maxEValue {
				start, end, err := parseAlnRegion(rc.Single.AlnRegion)
				if err != nil {
					return nil, fmt.Errorf("region %d on %s: %w", r.ID, q, err)
				}
				refined.Start = start
				refined.End = end
				refined.Length = end - start + 1
				refined.Target = rc.Single.Target
				refined.EValue = rc.Single.EValue
			}

			if useLength && (refined.Length < RegionMinLen || refined.Length > RegionMaxLen) {
				continue
			}
			out = append(out, refined)
		}
	}

	return out, nil
}

// parseAlnRegion splits a "start-end" interval string.
func parseAlnRegion(s string) (start, end int, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed refined interval %q", s)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed refined interval %q", s)
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed refined interval %q", s)
	}
	return start, end, nil
}
