// Package pipeline wires the core engine: hit grouping, region building,
// residue checking, criterion aggregation and region refinement.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/protlab/inteinscan/internal/align"
	"github.com/protlab/inteinscan/internal/check"
	"github.com/protlab/inteinscan/internal/criteria"
	"github.com/protlab/inteinscan/internal/fasta"
	"github.com/protlab/inteinscan/internal/hits"
	"github.com/protlab/inteinscan/internal/output"
	"github.com/protlab/inteinscan/internal/region"
)

// Result collects every table the core emits. All slices are in their final,
// deterministic order.
type Result struct {
	Regions   map[string][]region.Region
	Lines     []*check.Line
	Checks    []*criteria.RegionCheck
	Refined   []*criteria.RefinedRegion
	Summaries []*output.QuerySummary
}

// Run executes the core over pre-parsed hits. Queries and inteins are
// immutable for the duration of the run; profile and sequence hits carry
// canonical query ids.
func Run(ctx context.Context, queries, inteins *fasta.Store, profileHits, seqHits []*hits.Hit, aligner align.Aligner, cfg Config, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	all := make([]*hits.Hit, 0, len(profileHits)+len(seqHits))
	all = append(all, profileHits...)
	all = append(all, seqHits...)

	for _, h := range all {
		if queries.Get(h.Query) == nil {
			return nil, fmt.Errorf("hit table names query %s not present in the query set", h.Query)
		}
	}

	regions, err := region.BuildAll(hits.GroupByQuery(all))
	if err != nil {
		return nil, err
	}
	logger.Info("built putative intein regions",
		zap.Int("queries", len(regions)),
		zap.Int("hits", len(all)))

	checker := check.NewChecker(queries, inteins, regions, aligner)
	checker.SetPadding(cfg.Padding)
	checker.SetLogger(logger)

	lines, err := checker.CheckAll(ctx, seqHits, cfg.CPUs)
	if err != nil {
		return nil, err
	}
	logger.Info("residue checking finished", zap.Int("lines", len(lines)))

	checks := criteria.Aggregate(lines, cfg.NTermStrictness, cfg.CTermStrictness)

	refined, err := criteria.Refine(regions, checks, cfg.EValueRefinement, cfg.UseLengthInRefinement)
	if err != nil {
		return nil, err
	}

	return &Result{
		Regions:   regions,
		Lines:     lines,
		Checks:    checks,
		Refined:   refined,
		Summaries: Summarize(queries, profileHits, seqHits),
	}, nil
}

// Summarize builds the per-query summary: hit counts and best evalue from
// each of the two searches, one row per query in store order.
func Summarize(queries *fasta.Store, profileHits, seqHits []*hits.Hit) []*output.QuerySummary {
	byQuery := make(map[string]*output.QuerySummary, queries.Len())
	summaries := make([]*output.QuerySummary, 0, queries.Len())
	for _, id := range queries.IDs() {
		s := &output.QuerySummary{Query: id}
		byQuery[id] = s
		summaries = append(summaries, s)
	}

	for _, h := range profileHits {
		s := byQuery[h.Query]
		if s == nil {
			continue
		}
		if s.ProfileHits == 0 || h.EValue < s.ProfileBest {
			s.ProfileBest = h.EValue
		}
		s.ProfileHits++
	}
	for _, h := range seqHits {
		s := byQuery[h.Query]
		if s == nil {
			continue
		}
		if s.SequenceHits == 0 || h.EValue < s.SequenceBest {
			s.SequenceBest = h.EValue
		}
		s.SequenceHits++
	}

	return summaries
}

// SortedQueries returns the region map's query ids in ascending order.
func SortedQueries(regions map[string][]region.Region) []string {
	queries := make([]string, 0, len(regions))
	for q := range regions {
		queries = append(queries, q)
	}
	sort.Strings(queries)
	return queries
}
