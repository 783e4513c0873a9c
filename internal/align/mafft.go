package align

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/protlab/inteinscan/internal/fasta"
)

// Mafft runs the mafft binary over a per-call input FASTA written to Dir.
// Input files are removed after the alignment is read back unless
// KeepAlignments is set; aligned output is additionally written next to the
// input when KeepAlignments is set.
type Mafft struct {
	// Binary is the mafft executable name or path. Defaults to "mafft".
	Binary string
	// Dir is the directory for per-call input/output files. Defaults to the
	// system temp directory.
	Dir string
	// KeepAlignments retains input and aligned output files.
	KeepAlignments bool
}

// Align writes records to <Dir>/<name>.fasta, runs mafft on it and parses
// the aligned FASTA from stdout.
func (m *Mafft) Align(ctx context.Context, name string, records []*fasta.Record) ([]*fasta.Record, error) {
	binary := m.Binary
	if binary == "" {
		binary = "mafft"
	}
	dir := m.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	inPath := filepath.Join(dir, name+".fasta")
	in := fasta.NewStore()
	for _, r := range records {
		if err := in.Add(r); err != nil {
			return nil, fmt.Errorf("alignment input: %w", err)
		}
	}

	f, err := os.Create(inPath)
	if err != nil {
		return nil, fmt.Errorf("create alignment input: %w", err)
	}
	if err := in.Write(f, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("write alignment input: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close alignment input: %w", err)
	}
	if !m.KeepAlignments {
		defer os.Remove(inPath)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "--quiet", "--anysymbol", inPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		fullCmd := strings.Join(cmd.Args, " ")
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("running %q: %w\nstderr:\n%s", fullCmd, err, stderr.String())
		}
		return nil, fmt.Errorf("running %q: %w", fullCmd, err)
	}

	aligned, err := fasta.Parse(bytes.NewReader(stdout.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("parse aligned output for %s: %w", name, err)
	}
	if aligned.Len() != len(records) {
		return nil, fmt.Errorf("aligner returned %d records for %s, expected %d", aligned.Len(), name, len(records))
	}

	if m.KeepAlignments {
		outPath := filepath.Join(dir, name+".aln.fasta")
		out, err := os.Create(outPath)
		if err != nil {
			return nil, fmt.Errorf("create kept alignment: %w", err)
		}
		if err := aligned.Write(out, 0); err != nil {
			out.Close()
			return nil, fmt.Errorf("write kept alignment: %w", err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("close kept alignment: %w", err)
		}
	}

	out := make([]*fasta.Record, 0, aligned.Len())
	for _, id := range aligned.IDs() {
		out = append(out, aligned.Get(id))
	}
	return out, nil
}
