// Package output writes the result tables in tab-separated format.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/protlab/inteinscan/internal/check"
	"github.com/protlab/inteinscan/internal/criteria"
	"github.com/protlab/inteinscan/internal/fasta"
	"github.com/protlab/inteinscan/internal/region"
)

// none is the placeholder for absent values.
const none = "No"

func formatEValue(e float64) string {
	return strconv.FormatFloat(e, 'g', -1, 64)
}

// tabWriter is the shared frame for the table writers: a buffered writer
// plus a fixed column list.
type tabWriter struct {
	w       *bufio.Writer
	columns []string
}

func newTabWriter(w io.Writer, columns []string) tabWriter {
	return tabWriter{w: bufio.NewWriter(w), columns: columns}
}

// WriteHeader writes the header line.
func (tw *tabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

func (tw *tabWriter) writeRow(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *tabWriter) Flush() error {
	return tw.w.Flush()
}

// RegionsWriter writes the putative-regions table.
type RegionsWriter struct {
	tabWriter
	ids *fasta.IDMap
}

// NewRegionsWriter creates a regions writer. Query ids are restored to
// their original form through ids.
func NewRegionsWriter(w io.Writer, ids *fasta.IDMap) *RegionsWriter {
	return &RegionsWriter{
		tabWriter: newTabWriter(w, []string{"seq", "region.id", "start", "end", "len"}),
		ids:       ids,
	}
}

// Write writes one coarse region row.
func (rw *RegionsWriter) Write(query string, r region.Region) error {
	return rw.writeRow([]string{
		originalID(rw.ids, query),
		strconv.Itoa(r.ID),
		strconv.Itoa(r.QStart),
		strconv.Itoa(r.QEnd),
		strconv.Itoa(r.Len()),
	})
}

// CriteriaWriter writes the full per-hit criteria table.
type CriteriaWriter struct {
	tabWriter
	ids *fasta.IDMap
}

// NewCriteriaWriter creates a full-criteria writer.
func NewCriteriaWriter(w io.Writer, ids *fasta.IDMap) *CriteriaWriter {
	return &CriteriaWriter{
		tabWriter: newTabWriter(w, []string{
			"query",
			"target",
			"evalue",
			"which.region",
			"aln.region",
			"region.good",
			"has.start",
			"has.end",
			"has.extein.start",
		}),
		ids: ids,
	}
}

// Write writes one criterion line.
func (cw *CriteriaWriter) Write(l *check.Line) error {
	return cw.writeRow([]string{
		originalID(cw.ids, l.Query),
		l.Target,
		formatEValue(l.EValue),
		strconv.Itoa(l.RegionID),
		l.AlnRegion(),
		l.RegionGood.String(),
		l.StartGood.String(),
		l.EndGood.String(),
		l.ExteinGood.String(),
	})
}

// CondensedWriter writes the per-region condensed criteria table.
type CondensedWriter struct {
	tabWriter
	ids         *fasta.IDMap
	nStrictness int
	cStrictness int
}

// NewCondensedWriter creates a condensed-criteria writer. The strictness
// values decide the multi.target verdict.
func NewCondensedWriter(w io.Writer, ids *fasta.IDMap, nStrictness, cStrictness int) *CondensedWriter {
	return &CondensedWriter{
		tabWriter: newTabWriter(w, []string{
			"seq",
			"region.id",
			"single.target",
			"single.target.evalue",
			"single.target.region",
			"multi.target",
			"region",
			"start",
			"end",
			"extein",
		}),
		ids:         ids,
		nStrictness: nStrictness,
		cStrictness: cStrictness,
	}
}

// Write writes one condensed row.
func (cw *CondensedWriter) Write(rc *criteria.RegionCheck) error {
	singleTarget, singleEValue, singleRegion := none, none, none
	if rc.Single != nil {
		singleTarget = rc.Single.Target
		singleEValue = formatEValue(rc.Single.EValue)
		singleRegion = rc.Single.AlnRegion
	}

	multi := none
	if rc.AllGood(cw.nStrictness, cw.cStrictness) {
		multi = "L1"
	}

	return cw.writeRow([]string{
		originalID(cw.ids, rc.Query),
		strconv.Itoa(rc.RegionID),
		singleTarget,
		singleEValue,
		singleRegion,
		multi,
		rc.RegionGood.String(),
		rc.StartGood.String(),
		rc.EndGood.String(),
		rc.ExteinGood.String(),
	})
}

// RefinedWriter writes the refined-regions table.
type RefinedWriter struct {
	tabWriter
	ids *fasta.IDMap
}

// NewRefinedWriter creates a refined-regions writer.
func NewRefinedWriter(w io.Writer, ids *fasta.IDMap) *RefinedWriter {
	return &RefinedWriter{
		tabWriter: newTabWriter(w, []string{
			"seq",
			"region.id",
			"start",
			"end",
			"len",
			"refining.target",
			"refining.evalue",
		}),
		ids: ids,
	}
}

// Write writes one refined-region row.
func (rw *RefinedWriter) Write(r *criteria.RefinedRegion) error {
	target, evalue := none, none
	if r.Refined() {
		target = r.Target
		evalue = formatEValue(r.EValue)
	}

	return rw.writeRow([]string{
		originalID(rw.ids, r.Query),
		strconv.Itoa(r.RegionID),
		strconv.Itoa(r.Start),
		strconv.Itoa(r.End),
		strconv.Itoa(r.Length),
		target,
		evalue,
	})
}

// QuerySummary aggregates hit counts and best evalues per query from each
// of the two searches.
type QuerySummary struct {
	Query        string
	ProfileHits  int
	ProfileBest  float64
	SequenceHits int
	SequenceBest float64
}

// SummaryWriter writes the per-query summary table.
type SummaryWriter struct {
	tabWriter
	ids *fasta.IDMap
}

// NewSummaryWriter creates a query-summary writer.
func NewSummaryWriter(w io.Writer, ids *fasta.IDMap) *SummaryWriter {
	return &SummaryWriter{
		tabWriter: newTabWriter(w, []string{
			"seq",
			"rpsblast.hits",
			"rpsblast.best.evalue",
			"mmseqs.hits",
			"mmseqs.best.evalue",
		}),
		ids: ids,
	}
}

// Write writes one query summary row.
func (sw *SummaryWriter) Write(s *QuerySummary) error {
	profileBest, sequenceBest := none, none
	if s.ProfileHits > 0 {
		profileBest = formatEValue(s.ProfileBest)
	}
	if s.SequenceHits > 0 {
		sequenceBest = formatEValue(s.SequenceBest)
	}

	return sw.writeRow([]string{
		originalID(sw.ids, s.Query),
		strconv.Itoa(s.ProfileHits),
		profileBest,
		strconv.Itoa(s.SequenceHits),
		sequenceBest,
	})
}

func originalID(ids *fasta.IDMap, canonical string) string {
	if ids == nil {
		return canonical
	}
	if original, ok := ids.Original(canonical); ok {
		return original
	}
	return canonical
}

// WriteError wraps a table-write failure with the table name.
func WriteError(table string, err error) error {
	return fmt.Errorf("write %s table: %w", table, err)
}
