// Package check derives splice-junction residue evidence for each
// (query, intein-target) homology hit from a local three-way alignment.
package check

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/protlab/inteinscan/internal/align"
	"github.com/protlab/inteinscan/internal/fasta"
	"github.com/protlab/inteinscan/internal/hits"
	"github.com/protlab/inteinscan/internal/region"
	"github.com/protlab/inteinscan/internal/residue"
)

// DefaultPadding is the number of residues added on each side of a region
// when extracting the query clipping for alignment.
const DefaultPadding = 10

// ClipPrefix marks the padded query clipping record in alignment inputs.
const ClipPrefix = "clipped___"

const gap = '-'

// Line is the per-hit criterion record emitted by the checker.
type Line struct {
	Query      string
	Target     string
	EValue     float64
	RegionID   int
	RS         int // query position of the intein's first aligned residue
	RE         int // query position of the intein's last aligned residue
	RegionGood residue.Level
	StartGood  residue.Level
	EndGood    residue.Level
	ExteinGood residue.Level
}

// AlnRegion returns the refined interval as a "start-end" string.
func (l *Line) AlnRegion() string {
	return fmt.Sprintf("%d-%d", l.RS, l.RE)
}

// Checker evaluates splice-junction criteria for sequence-search hits.
// All stores and region maps are immutable once checking starts.
type Checker struct {
	queries *fasta.Store
	inteins *fasta.Store
	regions map[string][]region.Region
	aligner align.Aligner
	padding int
	logger  *zap.Logger
}

// NewChecker creates a checker over immutable query and intein stores.
func NewChecker(queries, inteins *fasta.Store, regions map[string][]region.Region, aligner align.Aligner) *Checker {
	return &Checker{
		queries: queries,
		inteins: inteins,
		regions: regions,
		aligner: aligner,
		padding: DefaultPadding,
		logger:  zap.NewNop(),
	}
}

// SetPadding overrides the clipping padding.
func (c *Checker) SetPadding(p int) {
	c.padding = p
}

// SetLogger sets the logger for skip warnings and progress messages.
func (c *Checker) SetLogger(l *zap.Logger) {
	c.logger = l
}

// CheckHit runs the per-hit procedure. A nil line with a nil error means the
// hit was skipped because the query row has a gap at the intein envelope
// boundary; that is the only non-fatal outcome.
func (c *Checker) CheckHit(ctx context.Context, h *hits.Hit) (*Line, error) {
	query := c.queries.Get(h.Query)
	if query == nil {
		return nil, fmt.Errorf("query %s from hit table not found in query store", h.Query)
	}
	intein := c.inteins.Get(h.Target)
	if intein == nil {
		return nil, fmt.Errorf("intein %s from hit table not found in intein store", h.Target)
	}

	// The region set is derived from the same hits, so an enclosing region
	// must exist.
	queryRegions := c.regions[h.Query]
	middle := float64(h.QStart+h.QEnd+1) / 2
	r, ok := region.Enclosing(queryRegions, middle)
	if !ok {
		return nil, fmt.Errorf("no region on %s encloses hit %s at %d-%d", h.Query, h.Target, h.QStart, h.QEnd)
	}

	clipping := clip(query.Seq, r, c.padding)

	records := []*fasta.Record{
		{ID: intein.ID, Seq: intein.Seq},
		{ID: ClipPrefix + query.ID, Seq: clipping},
		{ID: query.ID, Seq: query.Seq},
	}
	aligned, err := c.aligner.Align(ctx, alignName(h), records)
	if err != nil {
		return nil, fmt.Errorf("align %s vs %s: %w", h.Query, h.Target, err)
	}

	inteinAln, queryAln, err := identifyRows(aligned, intein.ID, query.ID)
	if err != nil {
		return nil, fmt.Errorf("align %s vs %s: %w", h.Query, h.Target, err)
	}

	first := strings.IndexFunc(inteinAln, notGap)
	last := strings.LastIndexFunc(inteinAln, notGap)
	if first == -1 {
		return nil, fmt.Errorf("intein %s aligned to all gaps against %s", h.Target, h.Query)
	}

	colToPos := columnPositions(queryAln)

	rs, ok := colToPos[first]
	if !ok {
		c.logger.Warn("couldn't determine region start, skipping hit",
			zap.String("query", h.Query),
			zap.String("target", h.Target))
		return nil, nil
	}
	re, ok := colToPos[last]
	if !ok {
		c.logger.Warn("couldn't determine region end, skipping hit",
			zap.String("query", h.Query),
			zap.String("target", h.Target))
		return nil, nil
	}

	startResidue := strings.ToUpper(string(queryAln[first]))
	endDipeptide := ""
	if last >= 1 {
		endDipeptide = strings.ToUpper(queryAln[last-1 : last+1])
	}

	exteinGood := residue.No
	if last+1 < len(queryAln) {
		exteinStart := strings.ToUpper(string(queryAln[last+1]))
		exteinGood = residue.Classify(exteinStart, residue.ExteinStart, nil)
	}

	regionGood := residue.No
	if region.Covering(queryRegions, rs, re) {
		regionGood = residue.L1
	}

	return &Line{
		Query:      h.Query,
		Target:     h.Target,
		EValue:     h.EValue,
		RegionID:   r.ID,
		RS:         rs,
		RE:         re,
		RegionGood: regionGood,
		StartGood:  residue.Classify(startResidue, residue.NTermL1, residue.NTermL2),
		EndGood:    residue.Classify(endDipeptide, residue.CTermL1, residue.CTermL2),
		ExteinGood: exteinGood,
	}, nil
}

// clip extracts the padded region window from seq, inclusive on both ends.
// Note the end offset subtracts the padding rather than adding it.
func clip(seq string, r region.Region, padding int) string {
	start := r.QStart - 1 - padding
	if start < 0 {
		start = 0
	}
	end := r.QEnd - 1 - padding
	if end > len(seq)-1 {
		end = len(seq) - 1
	}
	if end < start {
		return ""
	}
	return seq[start : end+1]
}

// columnPositions maps alignment columns holding query residues to the
// query's ungapped 1-based positions.
func columnPositions(alnRow string) map[int]int {
	m := make(map[int]int)
	pos := 0
	for col := 0; col < len(alnRow); col++ {
		if alnRow[col] != gap {
			pos++
			m[col] = pos
		}
	}
	return m
}

// identifyRows locates the intein and full-query rows by record id, falling
// back to positional order (intein first, query last) when ids collide.
func identifyRows(aligned []*fasta.Record, inteinID, queryID string) (inteinAln, queryAln string, err error) {
	if len(aligned) != 3 {
		return "", "", fmt.Errorf("expected 3 aligned records, got %d", len(aligned))
	}
	for _, rec := range aligned {
		switch rec.ID {
		case inteinID:
			inteinAln = rec.Seq
		case queryID:
			queryAln = rec.Seq
		}
	}
	if inteinAln == "" || queryAln == "" {
		inteinAln = aligned[0].Seq
		queryAln = aligned[2].Seq
	}
	if len(inteinAln) != len(queryAln) {
		return "", "", fmt.Errorf("aligned rows differ in length: %d vs %d", len(inteinAln), len(queryAln))
	}
	return inteinAln, queryAln, nil
}

func notGap(r rune) bool {
	return r != gap
}

// alignName builds a collision-free file stem from the hit's query and
// target ids.
func alignName(h *hits.Hit) string {
	sanitize := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch r {
			case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
				return '_'
			}
			return r
		}, s)
	}
	return sanitize(h.Query) + "___" + sanitize(h.Target)
}
