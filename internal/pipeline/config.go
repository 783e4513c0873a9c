package pipeline

import (
	"fmt"
	"runtime"

	"github.com/protlab/inteinscan/internal/check"
)

// maxEValueThreshold is the upper bound any evalue option may take.
const maxEValueThreshold = 0.1

// Config holds the options recognized by the core engine.
type Config struct {
	// NTermStrictness and CTermStrictness pick the pass rule for the
	// start-residue and end-dipeptide tests: 1 accepts only L1, 2 also L2.
	NTermStrictness int
	CTermStrictness int
	// RefinementStrictness is reserved; only 1 is supported.
	RefinementStrictness int
	// UseLengthInRefinement gates refined regions by length.
	UseLengthInRefinement bool
	// Evalue upper bounds; accepted hits satisfy evalue <= threshold.
	EValueRPSBlast   float64
	EValueMMseqs     float64
	EValueRefinement float64
	// CPUs is the parallel fan-out width of the residue checker.
	CPUs int
	// Padding is added on each side of a region when clipping the query.
	Padding int
}

// DefaultConfig returns a config with the reference defaults.
func DefaultConfig() Config {
	return Config{
		NTermStrictness:      1,
		CTermStrictness:      1,
		RefinementStrictness: 1,
		EValueRPSBlast:       1e-5,
		EValueMMseqs:         1e-5,
		EValueRefinement:     1e-10,
		CPUs:                 runtime.NumCPU(),
		Padding:              check.DefaultPadding,
	}
}

// Validate checks every option, naming the offending option in the error.
func (c *Config) Validate() error {
	if c.NTermStrictness != 1 && c.NTermStrictness != 2 {
		return fmt.Errorf("n_term_strictness must be 1 or 2, got %d", c.NTermStrictness)
	}
	if c.CTermStrictness != 1 && c.CTermStrictness != 2 {
		return fmt.Errorf("c_term_strictness must be 1 or 2, got %d", c.CTermStrictness)
	}
	if c.RefinementStrictness != 1 {
		return fmt.Errorf("refinement_strictness only supports 1, got %d", c.RefinementStrictness)
	}
	for _, ev := range []struct {
		name  string
		value float64
	}{
		{"evalue_rpsblast", c.EValueRPSBlast},
		{"evalue_mmseqs", c.EValueMMseqs},
		{"evalue_region_refinement", c.EValueRefinement},
	} {
		if ev.value <= 0 || ev.value > maxEValueThreshold {
			return fmt.Errorf("%s must be in (0, %g], got %g", ev.name, maxEValueThreshold, ev.value)
		}
	}
	if c.CPUs < 1 {
		return fmt.Errorf("cpus must be >= 1, got %d", c.CPUs)
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must be >= 0, got %d", c.Padding)
	}
	return nil
}
