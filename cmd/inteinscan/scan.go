package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/protlab/inteinscan/internal/align"
	"github.com/protlab/inteinscan/internal/duckdb"
	"github.com/protlab/inteinscan/internal/fasta"
	"github.com/protlab/inteinscan/internal/hits"
	"github.com/protlab/inteinscan/internal/pipeline"
	"github.com/protlab/inteinscan/internal/search"
)

// scanOptions collects the scan command's flag values.
type scanOptions struct {
	queriesPath string
	inteinsPath string

	profileList  string
	rpsblastHits string
	mmseqsHits   string

	outDir         string
	mafftBinary    string
	keepAlignments bool
	resultsDB      string
	verbose        bool

	nTermStrictness       int
	cTermStrictness       int
	refinementStrictness  int
	useLengthInRefinement bool
	evalueRPSBlast        float64
	evalueMMseqs          float64
	evalueRefinement      float64
	cpus                  int
	padding               int
}

func newScanCmd() *cobra.Command {
	var opts scanOptions
	defaults := pipeline.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan query proteins for putative inteins",
		Long: `Scan runs both homology searches (or consumes pre-computed hit
tables), merges hits into putative intein regions, checks splice-junction
residues through per-hit alignments, and writes the result tables.`,
		Example: `  # Run the full pipeline (needs rpsblast, mmseqs and mafft on PATH)
  inteinscan scan --queries proteome.fasta --inteins inteins.fasta --profiles profiles.pn

  # Re-evaluate pre-computed search output
  inteinscan scan --queries proteome.fasta --inteins inteins.fasta \
      --rpsblast-hits rps.tsv --mmseqs-hits mmseqs.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, &opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.queriesPath, "queries", "", "Query protein FASTA (required)")
	fs.StringVar(&opts.inteinsPath, "inteins", "", "Reference intein FASTA (required)")
	fs.StringVar(&opts.profileList, "profiles", "", "Conserved-domain profile list (.pn) for makeprofiledb/rpsblast")
	fs.StringVar(&opts.rpsblastHits, "rpsblast-hits", "", "Pre-computed rpsblast tabular output")
	fs.StringVar(&opts.mmseqsHits, "mmseqs-hits", "", "Pre-computed mmseqs easy-search tabular output")
	fs.StringVar(&opts.outDir, "out-dir", "inteinscan_out", "Output directory for result tables")
	fs.StringVar(&opts.mafftBinary, "mafft", "mafft", "mafft executable")
	fs.BoolVar(&opts.keepAlignments, "keep-alignments", false, "Keep per-hit alignment files")
	fs.StringVar(&opts.resultsDB, "results-db", "", "DuckDB database to append result tables to")
	fs.BoolVar(&opts.verbose, "verbose", false, "Verbose logging")
	fs.IntVar(&opts.nTermStrictness, "n-term-strictness", defaults.NTermStrictness, "Start-residue strictness (1 or 2)")
	fs.IntVar(&opts.cTermStrictness, "c-term-strictness", defaults.CTermStrictness, "End-dipeptide strictness (1 or 2)")
	fs.IntVar(&opts.refinementStrictness, "refinement-strictness", defaults.RefinementStrictness, "Refinement strictness (only 1 supported)")
	fs.BoolVar(&opts.useLengthInRefinement, "use-length-in-refinement", false, "Drop refined regions outside the expected intein length range")
	fs.Float64Var(&opts.evalueRPSBlast, "evalue-rpsblast", defaults.EValueRPSBlast, "rpsblast evalue threshold")
	fs.Float64Var(&opts.evalueMMseqs, "evalue-mmseqs", defaults.EValueMMseqs, "mmseqs evalue threshold")
	fs.Float64Var(&opts.evalueRefinement, "evalue-region-refinement", defaults.EValueRefinement, "Region refinement evalue threshold")
	fs.IntVar(&opts.cpus, "cpus", defaults.CPUs, "Parallel workers for residue checking")
	fs.IntVar(&opts.padding, "padding", defaults.Padding, "Residues of padding around a region clipping")

	cobra.CheckErr(cmd.MarkFlagRequired("queries"))
	cobra.CheckErr(cmd.MarkFlagRequired("inteins"))
	cobra.CheckErr(viper.BindPFlags(fs))

	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Engine options fall back to INTEINSCAN_* and ~/.inteinscan.yaml.
	opts.nTermStrictness = viper.GetInt("n-term-strictness")
	opts.cTermStrictness = viper.GetInt("c-term-strictness")
	opts.refinementStrictness = viper.GetInt("refinement-strictness")
	opts.useLengthInRefinement = viper.GetBool("use-length-in-refinement")
	opts.evalueRPSBlast = viper.GetFloat64("evalue-rpsblast")
	opts.evalueMMseqs = viper.GetFloat64("evalue-mmseqs")
	opts.evalueRefinement = viper.GetFloat64("evalue-region-refinement")
	opts.cpus = viper.GetInt("cpus")
	opts.padding = viper.GetInt("padding")

	cfg := pipeline.Config{
		NTermStrictness:       opts.nTermStrictness,
		CTermStrictness:       opts.cTermStrictness,
		RefinementStrictness:  opts.refinementStrictness,
		UseLengthInRefinement: opts.useLengthInRefinement,
		EValueRPSBlast:        opts.evalueRPSBlast,
		EValueMMseqs:          opts.evalueMMseqs,
		EValueRefinement:      opts.evalueRefinement,
		CPUs:                  opts.cpus,
		Padding:               opts.padding,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	precomputed := opts.rpsblastHits != "" || opts.mmseqsHits != ""
	if precomputed && (opts.rpsblastHits == "" || opts.mmseqsHits == "") {
		return fmt.Errorf("--rpsblast-hits and --mmseqs-hits must be given together")
	}
	if precomputed && opts.profileList != "" {
		return fmt.Errorf("--profiles is mutually exclusive with pre-computed hit tables")
	}
	if !precomputed && opts.profileList == "" {
		return fmt.Errorf("either --profiles or both pre-computed hit tables are required")
	}

	original, err := fasta.Load(opts.queriesPath)
	if err != nil {
		return err
	}
	inteins, err := fasta.Load(opts.inteinsPath)
	if err != nil {
		return err
	}
	queries, ids := fasta.Canonicalize(original)
	logger.Info("loaded sequences",
		zap.Int("queries", queries.Len()),
		zap.Int("inteins", inteins.Len()))

	workDir := filepath.Join(opts.outDir, "work")
	alignDir := filepath.Join(workDir, "alignments")
	if err := os.MkdirAll(alignDir, 0755); err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}

	rpsPath, mmseqsPath := opts.rpsblastHits, opts.mmseqsHits
	if !precomputed {
		rpsPath, mmseqsPath, err = runSearches(cmd, opts, queries, workDir, logger)
		if err != nil {
			return err
		}
	}

	profileHits, err := loadHits(rpsPath, hits.OriginProfile, cfg.EValueRPSBlast, queries, ids)
	if err != nil {
		return err
	}
	seqHits, err := loadHits(mmseqsPath, hits.OriginSequence, cfg.EValueMMseqs, queries, ids)
	if err != nil {
		return err
	}
	logger.Info("loaded hits",
		zap.Int("profile", len(profileHits)),
		zap.Int("sequence", len(seqHits)))

	aligner := &align.Mafft{
		Binary:         opts.mafftBinary,
		Dir:            alignDir,
		KeepAlignments: opts.keepAlignments,
	}

	res, err := pipeline.Run(cmd.Context(), queries, inteins, profileHits, seqHits, aligner, cfg, logger)
	if err != nil {
		return err
	}

	if err := pipeline.WriteTables(res, ids, opts.outDir, cfg); err != nil {
		return err
	}
	logger.Info("wrote result tables", zap.String("dir", opts.outDir))

	if opts.resultsDB != "" {
		if err := appendResults(opts.resultsDB, res, logger); err != nil {
			return err
		}
	}

	return nil
}

// runSearches writes the renamed queries, builds the profile database and runs both
// homology searches, returning the hit-table paths.
func runSearches(cmd *cobra.Command, opts *scanOptions, queries *fasta.Store, workDir string, logger *zap.Logger) (rpsPath, mmseqsPath string, err error) {
	queriesPath := filepath.Join(workDir, "queries.fasta")
	f, err := os.Create(queriesPath)
	if err != nil {
		return "", "", fmt.Errorf("write renamed queries: %w", err)
	}
	if err := queries.Write(f, 60); err != nil {
		f.Close()
		return "", "", fmt.Errorf("write renamed queries: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("write renamed queries: %w", err)
	}

	runner := search.NewExecRunner(logger)
	ctx := cmd.Context()

	profileDB := filepath.Join(workDir, "profiledb", "profiles")
	if err := os.MkdirAll(filepath.Dir(profileDB), 0755); err != nil {
		return "", "", fmt.Errorf("create profile db directory: %w", err)
	}
	if err := search.MakeProfileDB(ctx, runner, opts.profileList, profileDB); err != nil {
		return "", "", err
	}

	rpsPath = filepath.Join(workDir, "rpsblast.tsv")
	if err := search.RPSBlast(ctx, runner, queriesPath, profileDB, rpsPath, opts.evalueRPSBlast, opts.cpus); err != nil {
		return "", "", err
	}

	mmseqsPath = filepath.Join(workDir, "mmseqs.tsv")
	mmseqsTmp := filepath.Join(workDir, "mmseqs_tmp")
	if err := search.MMseqsEasySearch(ctx, runner, queriesPath, opts.inteinsPath, mmseqsPath, mmseqsTmp, opts.evalueMMseqs, opts.cpus); err != nil {
		return "", "", err
	}

	return rpsPath, mmseqsPath, nil
}

// loadHits parses a hit table and normalizes query ids to canonical form.
// A query id found in neither form is a pipeline inconsistency.
func loadHits(path string, origin hits.Origin, maxEValue float64, queries *fasta.Store, ids *fasta.IDMap) ([]*hits.Hit, error) {
	hs, err := hits.LoadFile(path, origin, maxEValue)
	if err != nil {
		return nil, err
	}
	for _, h := range hs {
		if queries.Get(h.Query) != nil {
			continue
		}
		canonical, ok := ids.Canonical(h.Query)
		if !ok {
			return nil, fmt.Errorf("%s hit table names unknown query id %q", origin, h.Query)
		}
		h.Query = canonical
	}
	return hs, nil
}

func appendResults(path string, res *pipeline.Result, logger *zap.Logger) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := time.Now().UTC().Format(time.RFC3339)
	if err := store.WriteCriteriaLines(run, res.Lines); err != nil {
		return err
	}
	if err := store.WriteRefinedRegions(run, res.Refined); err != nil {
		return err
	}
	logger.Info("appended results to database",
		zap.String("path", path),
		zap.String("run", run))
	return nil
}

// newLogger builds a console logger on stderr. Verbose mode lowers the level
// to info; warnings always surface.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}
