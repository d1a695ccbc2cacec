package align

import (
	"io"
	"os"
	"path/filepath"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
	"github.com/reedacartwright/coati/io/coatijson"
	"github.com/reedacartwright/coati/io/fasta"
	"github.com/reedacartwright/coati/io/phylip"
)

// readInput reads sequences from the configured input path, picking
// the codec from the file extension. An empty path or "-" reads JSON
// from stdin.
func readInput(o Options) (bio.Sequences, error) {
	if o.InputPath == "" || o.InputPath == "-" {
		in := o.Stdin
		if in == nil {
			in = os.Stdin
		}
		return coatijson.Read(in)
	}
	f, err := os.Open(o.InputPath)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "opening input file", err)
	}
	defer f.Close()

	switch filepath.Ext(o.InputPath) {
	case ".fa", ".fasta":
		return fasta.Read(f)
	case ".phy":
		return phylip.Read(f)
	case ".json":
		return coatijson.Read(f)
	}
	return nil, errs.Newf(errs.InvalidInput, "unsupported input format %q", o.InputPath)
}

// writeOutput writes sequences to the configured output path, picking
// the codec from the file extension. An empty path or "-" writes JSON
// to stdout.
func writeOutput(o Options, seqs bio.Sequences) error {
	if o.OutputPath == "" || o.OutputPath == "-" {
		out := o.Stdout
		if out == nil {
			out = os.Stdout
		}
		return coatijson.Write(out, seqs)
	}

	var write func(io.Writer, bio.Sequences) error
	switch filepath.Ext(o.OutputPath) {
	case ".fa", ".fasta":
		write = fasta.Write
	case ".phy":
		write = phylip.Write
	case ".json":
		write = coatijson.Write
	default:
		return errs.Newf(errs.InvalidInput, "unsupported output format %q", o.OutputPath)
	}

	f, err := os.Create(o.OutputPath)
	if err != nil {
		return errs.Wrap(errs.Io, "creating output file", err)
	}
	if err := write(f, seqs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.Io, "closing output file", err)
	}
	return nil
}

// stdout returns the configured stdout stream.
func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}
