package search

import (
	"context"
	"fmt"
	"strconv"
)

// Tabular output formats. Both searches share the first 12 columns; mmseqs
// additionally reports qlen and tlen.
const (
	blastOutfmt  = "6 qseqid sseqid pident length mismatch gapopen qstart qend sstart send evalue bitscore"
	mmseqsFormat = "query,target,pident,alnlen,mismatch,gapopen,qstart,qend,tstart,tend,evalue,bits,qlen,tlen"
)

// MakeProfileDB builds an rpsblast profile database from a .pn profile list.
func MakeProfileDB(ctx context.Context, r Runner, profileList, dbPath string) error {
	_, err := r.Run(ctx, "makeprofiledb",
		"-in", profileList,
		"-out", dbPath,
	)
	if err != nil {
		return fmt.Errorf("makeprofiledb: %w", err)
	}
	return nil
}

// RPSBlast searches the queries against a conserved-domain profile database,
// writing 12-column tabular output to outPath.
func RPSBlast(ctx context.Context, r Runner, queryFasta, dbPath, outPath string, maxEValue float64, cpus int) error {
	_, err := r.Run(ctx, "rpsblast",
		"-query", queryFasta,
		"-db", dbPath,
		"-out", outPath,
		"-outfmt", blastOutfmt,
		"-evalue", strconv.FormatFloat(maxEValue, 'g', -1, 64),
		"-num_threads", strconv.Itoa(cpus),
	)
	if err != nil {
		return fmt.Errorf("rpsblast: %w", err)
	}
	return nil
}

// MMseqsEasySearch searches the queries against the intein sequence
// database, writing 14-column tabular output to outPath.
func MMseqsEasySearch(ctx context.Context, r Runner, queryFasta, inteinFasta, outPath, tmpDir string, maxEValue float64, cpus int) error {
	_, err := r.Run(ctx, "mmseqs", "easy-search",
		queryFasta,
		inteinFasta,
		outPath,
		tmpDir,
		"--format-output", mmseqsFormat,
		"-e", strconv.FormatFloat(maxEValue, 'g', -1, 64),
		"--threads", strconv.Itoa(cpus),
	)
	if err != nil {
		return fmt.Errorf("mmseqs easy-search: %w", err)
	}
	return nil
}
