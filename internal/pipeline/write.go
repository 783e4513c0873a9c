package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/protlab/inteinscan/internal/fasta"
	"github.com/protlab/inteinscan/internal/output"
)

// Output file names inside the results directory.
const (
	RegionsFile   = "putative_regions.tsv"
	CriteriaFile  = "intein_criteria_full.tsv"
	CondensedFile = "intein_criteria_condensed.tsv"
	RefinedFile   = "refined_regions.tsv"
	SummaryFile   = "query_summary.tsv"
)

// WriteTables writes every result table into dir, restoring original query
// ids through ids.
func WriteTables(res *Result, ids *fasta.IDMap, dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := writeFile(dir, RegionsFile, func(f *os.File) error {
		w := output.NewRegionsWriter(f, ids)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		for _, q := range SortedQueries(res.Regions) {
			for _, r := range res.Regions[q] {
				if err := w.Write(q, r); err != nil {
					return err
				}
			}
		}
		return w.Flush()
	}); err != nil {
		return output.WriteError("putative regions", err)
	}

	if err := writeFile(dir, CriteriaFile, func(f *os.File) error {
		w := output.NewCriteriaWriter(f, ids)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		for _, l := range res.Lines {
			if err := w.Write(l); err != nil {
				return err
			}
		}
		return w.Flush()
	}); err != nil {
		return output.WriteError("full criteria", err)
	}

	if err := writeFile(dir, CondensedFile, func(f *os.File) error {
		w := output.NewCondensedWriter(f, ids, cfg.NTermStrictness, cfg.CTermStrictness)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		for _, rc := range res.Checks {
			if err := w.Write(rc); err != nil {
				return err
			}
		}
		return w.Flush()
	}); err != nil {
		return output.WriteError("condensed criteria", err)
	}

	if err := writeFile(dir, RefinedFile, func(f *os.File) error {
		w := output.NewRefinedWriter(f, ids)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		for _, r := range res.Refined {
			if err := w.Write(r); err != nil {
				return err
			}
		}
		return w.Flush()
	}); err != nil {
		return output.WriteError("refined regions", err)
	}

	if err := writeFile(dir, SummaryFile, func(f *os.File) error {
		w := output.NewSummaryWriter(f, ids)
		if err := w.WriteHeader(); err != nil {
			return err
		}
		for _, s := range res.Summaries {
			if err := w.Write(s); err != nil {
				return err
			}
		}
		return w.Flush()
	}); err != nil {
		return output.WriteError("query summary", err)
	}

	return nil
}

func writeFile(dir, name string, fill func(*os.File) error) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
