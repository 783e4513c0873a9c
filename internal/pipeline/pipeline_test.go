package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protlab/inteinscan/internal/fasta"
	"github.com/protlab/inteinscan/internal/hits"
	"github.com/protlab/inteinscan/internal/region"
	"github.com/protlab/inteinscan/internal/residue"
)

// canned alignment: the intein occupies columns 12-35 over a gapless query
// row, with splice-junction residues that satisfy every criterion.
var (
	testQueryRow  = strings.Repeat("G", 12) + "C" + strings.Repeat("G", 21) + "HNS" + strings.Repeat("G", 13)
	testInteinRow = strings.Repeat("-", 12) + strings.Repeat("M", 24) + strings.Repeat("-", 14)
)

type cannedAligner struct{}

func (cannedAligner) Align(_ context.Context, _ string, records []*fasta.Record) ([]*fasta.Record, error) {
	return []*fasta.Record{
		{ID: records[0].ID, Seq: testInteinRow},
		{ID: records[1].ID, Seq: strings.Repeat("G", 50)},
		{ID: records[2].ID, Seq: testQueryRow},
	}, nil
}

func runFixture(t *testing.T) (queries, inteins *fasta.Store, ids *fasta.IDMap, profileHits, seqHits []*hits.Hit) {
	t.Helper()

	original := fasta.NewStore()
	require.NoError(t, original.Add(&fasta.Record{ID: "contig1", Seq: strings.Repeat("G", 50)}))
	queries, ids = fasta.Canonicalize(original)

	inteins = fasta.NewStore()
	require.NoError(t, inteins.Add(&fasta.Record{ID: "intA", Seq: strings.Repeat("M", 24)}))

	profileHits = []*hits.Hit{
		{Query: "user_query___seq_1", Target: "cd00081", QStart: 11, QEnd: 40, EValue: 1e-25, Origin: hits.OriginProfile},
	}
	seqHits = []*hits.Hit{
		{Query: "user_query___seq_1", Target: "intA", QStart: 11, QEnd: 40, EValue: 1e-20, Origin: hits.OriginSequence},
	}
	return queries, inteins, ids, profileHits, seqHits
}

func TestRun_EndToEnd(t *testing.T) {
	queries, inteins, _, profileHits, seqHits := runFixture(t)

	cfg := DefaultConfig()
	cfg.CPUs = 2

	res, err := Run(context.Background(), queries, inteins, profileHits, seqHits, cannedAligner{}, cfg, nil)
	require.NoError(t, err)

	require.Len(t, res.Regions["user_query___seq_1"], 1)
	r := res.Regions["user_query___seq_1"][0]
	assert.Equal(t, 11, r.QStart)
	assert.Equal(t, 40, r.QEnd)

	require.Len(t, res.Lines, 1)
	l := res.Lines[0]
	assert.Equal(t, 13, l.RS)
	assert.Equal(t, 36, l.RE)
	assert.Equal(t, residue.L1, l.RegionGood)
	assert.Equal(t, residue.L1, l.StartGood)
	assert.Equal(t, residue.L1, l.EndGood)
	assert.Equal(t, residue.L1, l.ExteinGood)

	require.Len(t, res.Checks, 1)
	require.NotNil(t, res.Checks[0].Single)
	assert.Equal(t, "intA", res.Checks[0].Single.Target)

	require.Len(t, res.Refined, 1)
	ref := res.Refined[0]
	assert.True(t, ref.Refined())
	assert.Equal(t, 13, ref.Start)
	assert.Equal(t, 36, ref.End)
	assert.Equal(t, 24, ref.Length)

	require.Len(t, res.Summaries, 1)
	s := res.Summaries[0]
	assert.Equal(t, 1, s.ProfileHits)
	assert.Equal(t, 1e-25, s.ProfileBest)
	assert.Equal(t, 1, s.SequenceHits)
	assert.Equal(t, 1e-20, s.SequenceBest)
}

func TestRun_InvalidConfig(t *testing.T) {
	queries, inteins, _, profileHits, seqHits := runFixture(t)

	cfg := DefaultConfig()
	cfg.RefinementStrictness = 2

	_, err := Run(context.Background(), queries, inteins, profileHits, seqHits, cannedAligner{}, cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refinement_strictness")
}

func TestRun_UnknownHitQuery(t *testing.T) {
	queries, inteins, _, _, seqHits := runFixture(t)

	ghost := []*hits.Hit{
		{Query: "user_query___seq_9", Target: "cd00081", QStart: 1, QEnd: 10, EValue: 1e-20, Origin: hits.OriginProfile},
	}

	_, err := Run(context.Background(), queries, inteins, ghost, seqHits, cannedAligner{}, DefaultConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_query___seq_9")
}

func TestSummarize(t *testing.T) {
	queries := fasta.NewStore()
	require.NoError(t, queries.Add(&fasta.Record{ID: "q1", Seq: "M"}))
	require.NoError(t, queries.Add(&fasta.Record{ID: "q2", Seq: "M"}))

	profileHits := []*hits.Hit{
		{Query: "q1", EValue: 1e-10},
		{Query: "q1", EValue: 1e-30},
		{Query: "q1", EValue: 1e-20},
	}
	seqHits := []*hits.Hit{
		{Query: "q2", EValue: 1e-8},
		{Query: "unknown", EValue: 1e-50},
	}

	summaries := Summarize(queries, profileHits, seqHits)
	require.Len(t, summaries, 2)

	assert.Equal(t, "q1", summaries[0].Query)
	assert.Equal(t, 3, summaries[0].ProfileHits)
	assert.Equal(t, 1e-30, summaries[0].ProfileBest)
	assert.Equal(t, 0, summaries[0].SequenceHits)

	assert.Equal(t, "q2", summaries[1].Query)
	assert.Equal(t, 0, summaries[1].ProfileHits)
	assert.Equal(t, 1, summaries[1].SequenceHits)
	assert.Equal(t, 1e-8, summaries[1].SequenceBest)
}

func TestWriteTables(t *testing.T) {
	queries, inteins, ids, profileHits, seqHits := runFixture(t)

	cfg := DefaultConfig()
	cfg.CPUs = 1

	res, err := Run(context.Background(), queries, inteins, profileHits, seqHits, cannedAligner{}, cfg, nil)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "results")
	require.NoError(t, WriteTables(res, ids, dir, cfg))

	read := func(name string) []string {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	regions := read(RegionsFile)
	require.Len(t, regions, 2)
	assert.Equal(t, "seq\tregion.id\tstart\tend\tlen", regions[0])
	assert.Equal(t, "contig1\t0\t11\t40\t30", regions[1])

	full := read(CriteriaFile)
	require.Len(t, full, 2)
	assert.Equal(t, "contig1\tintA\t1e-20\t0\t13-36\tL1\tL1\tL1\tL1", full[1])

	condensed := read(CondensedFile)
	require.Len(t, condensed, 2)
	assert.Equal(t, "contig1\t0\tintA\t1e-20\t13-36\tL1\tL1\tL1\tL1\tL1", condensed[1])

	refined := read(RefinedFile)
	require.Len(t, refined, 2)
	assert.Equal(t, "contig1\t0\t13\t36\t24\tintA\t1e-20", refined[1])

	summary := read(SummaryFile)
	require.Len(t, summary, 2)
	assert.Equal(t, "contig1\t1\t1e-25\t1\t1e-20", summary[1])
}

func TestSortedQueries(t *testing.T) {
	regions := map[string][]region.Region{
		"q3": nil,
		"q1": nil,
		"q2": nil,
	}
	assert.Equal(t, []string{"q1", "q2", "q3"}, SortedQueries(regions))
}
