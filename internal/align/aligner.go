// Package align invokes an external multiple-sequence aligner over small
// FASTA inputs.
package align

import (
	"context"

	"github.com/protlab/inteinscan/internal/fasta"
)

// Aligner produces a multiple alignment of the given records. The returned
// records carry gap characters ('-') and appear in input order unless the
// caller re-identifies them by id. name is a collision-free stem for any
// intermediate files the implementation creates.
type Aligner interface {
	Align(ctx context.Context, name string, records []*fasta.Record) ([]*fasta.Record, error)
}
