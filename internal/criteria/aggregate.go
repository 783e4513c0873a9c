// Package criteria condenses per-hit splice-junction evidence into
// per-region verdicts and refines region boundaries from the best evidence.
package criteria

import (
	"github.com/protlab/inteinscan/internal/check"
	"github.com/protlab/inteinscan/internal/residue"
)

// SingleTarget records the best single intein target for which every
// criterion passed, with the refined interval its alignment implies.
type SingleTarget struct {
	Target    string
	EValue    float64
	AlnRegion string
}

// RegionCheck is the condensed verdict for one (query, region) pair.
// Fields only upgrade across the input stream, never downgrade.
type RegionCheck struct {
	Query      string
	RegionID   int
	RegionGood residue.Level
	StartGood  residue.Level
	EndGood    residue.Level
	ExteinGood residue.Level
	Single     *SingleTarget // nil when no single target passed everything
}

// AllGood reports whether the aggregate evidence, possibly combined across
// targets, satisfies every criterion at the given strictness.
func (rc *RegionCheck) AllGood(nStrictness, cStrictness int) bool {
	return rc.RegionGood == residue.L1 &&
		residue.Pass(rc.StartGood, nStrictness) &&
		residue.Pass(rc.EndGood, cStrictness) &&
		rc.ExteinGood == residue.L1
}

// Aggregate folds sorted criterion lines into one RegionCheck per
// (query, region). Lines MUST be in (query, region, evalue) sort order; the
// first all-good line per region then carries the best evalue and becomes
// the single-target winner.
func Aggregate(lines []*check.Line, nStrictness, cStrictness int) []*RegionCheck {
	var out []*RegionCheck
	index := make(map[[2]interface{}]*RegionCheck)

	for _, l := range lines {
		key := [2]interface{}{l.Query, l.RegionID}
		rc, ok := index[key]
		if !ok {
			rc = &RegionCheck{Query: l.Query, RegionID: l.RegionID}
			index[key] = rc
			out = append(out, rc)
		}

		startPass := residue.Pass(l.StartGood, nStrictness)
		endPass := residue.Pass(l.EndGood, cStrictness)
		allGood := l.RegionGood == residue.L1 && startPass && endPass && l.ExteinGood == residue.L1

		if allGood && rc.Single == nil {
			rc.Single = &SingleTarget{
				Target:    l.Target,
				EValue:    l.EValue,
				AlnRegion: l.AlnRegion(),
			}
		}

		if l.RegionGood == residue.L1 {
			rc.RegionGood = residue.L1
		}
		if startPass {
			rc.StartGood = residue.Max(rc.StartGood, l.StartGood)
		}
		if endPass {
			rc.EndGood = residue.Max(rc.EndGood, l.EndGood)
		}
		if l.ExteinGood == residue.L1 {
			rc.ExteinGood = residue.L1
		}
	}

	return out
}
