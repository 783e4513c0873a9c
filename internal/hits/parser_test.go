package hits

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	profileLine  = "user_query___seq_1\tcd00081\t35.2\t120\t70\t3\t10\t125\t1\t118\t1e-20\t95.5"
	sequenceLine = "user_query___seq_1\tIntein_12\t42.0\t150\t80\t2\t15\t160\t1\t148\t1e-30\t180.0\t400\t152"
)

func TestParse_ProfileHit(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(profileLine+"\n"), OriginProfile, 0.1)

	h, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, "user_query___seq_1", h.Query)
	assert.Equal(t, "cd00081", h.Target)
	assert.Equal(t, 35.2, h.PctIdent)
	assert.Equal(t, 120, h.AlnLen)
	assert.Equal(t, 70, h.Mismatch)
	assert.Equal(t, 3, h.GapOpen)
	assert.Equal(t, 10, h.QStart)
	assert.Equal(t, 125, h.QEnd)
	assert.Equal(t, 1, h.TStart)
	assert.Equal(t, 118, h.TEnd)
	assert.Equal(t, 1e-20, h.EValue)
	assert.Equal(t, 95.5, h.BitScore)
	assert.Equal(t, OriginProfile, h.Origin)

	h, err = p.Next()
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestParse_SequenceHitCarriesTargetLen(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(sequenceLine+"\n"), OriginSequence, 0.1)

	h, err := p.Next()
	require.NoError(t, err)
	require.NotNil(t, h)

	assert.Equal(t, "Intein_12", h.Target)
	assert.Equal(t, 152, h.TargetLen)
	assert.Equal(t, OriginSequence, h.Origin)
}

func TestParse_SequenceHitMissingTargetLen(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(profileLine+"\n"), OriginSequence, 0.1)

	_, err := p.Next()
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
}

func TestParse_AboveThresholdRowsDiscarded(t *testing.T) {
	leaky := "q1\tt1\t30.0\t50\t30\t1\t5\t55\t1\t50\t0.5\t40.0\n" + // above threshold
		"q1\tt2\t30.0\t50\t30\t1\t5\t55\t1\t50\t1e-10\t60.0\n"
	p := NewParserFromReader(strings.NewReader(leaky), OriginProfile, 0.1)

	hs, err := p.All()
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "t2", hs[0].Target)
}

func TestParse_ThresholdIsInclusive(t *testing.T) {
	line := "q1\tt1\t30.0\t50\t30\t1\t5\t55\t1\t50\t0.1\t40.0\n"
	p := NewParserFromReader(strings.NewReader(line), OriginProfile, 0.1)

	hs, err := p.All()
	require.NoError(t, err)
	assert.Len(t, hs, 1)
}

func TestParse_MalformedFieldIsFatal(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad qstart", "q1\tt1\t30.0\t50\t30\t1\tabc\t55\t1\t50\t1e-10\t40.0"},
		{"bad evalue", "q1\tt1\t30.0\t50\t30\t1\t5\t55\t1\t50\tnope\t40.0"},
		{"too few columns", "q1\tt1\t30.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParserFromReader(strings.NewReader(tt.line+"\n"), OriginProfile, 0.1)
			_, err := p.Next()
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Error(), tt.line, "error should carry the offending line")
		})
	}
}

func TestParse_SkipsBlankLines(t *testing.T) {
	content := "\n" + profileLine + "\n\n"
	p := NewParserFromReader(strings.NewReader(content), OriginProfile, 0.1)

	hs, err := p.All()
	require.NoError(t, err)
	assert.Len(t, hs, 1)
}

func TestParse_NoTrailingNewline(t *testing.T) {
	p := NewParserFromReader(strings.NewReader(profileLine), OriginProfile, 0.1)

	hs, err := p.All()
	require.NoError(t, err)
	assert.Len(t, hs, 1)
}

func TestGroupByQuery(t *testing.T) {
	hs := []*Hit{
		{Query: "q1", Target: "a"},
		{Query: "q2", Target: "b"},
		{Query: "q1", Target: "c"},
	}

	grouped := GroupByQuery(hs)
	require.Len(t, grouped, 2)
	assert.Equal(t, []string{"a", "c"}, []string{grouped["q1"][0].Target, grouped["q1"][1].Target})
	assert.Len(t, grouped["q2"], 1)
}
