// Package align orchestrates the pairwise alignment operations: it
// reads and validates input, builds the substitution model, runs the
// dynamic program and dispatches output.
package align

import (
	"io"

	"github.com/reedacartwright/coati/codon"
	"github.com/reedacartwright/coati/dp"
	"github.com/reedacartwright/coati/errs"
)

// Options configures one driver call. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	InputPath  string // sequence file; "" or "-" reads JSON from stdin
	OutputPath string // output file; "" or "-" writes JSON to stdout
	Model      string
	RateCSV    string // optional rate-matrix override, bypasses Model
	Ref        string // reference sequence name
	Rev        bool   // swap the pair when Ref does not name either

	BranchLength float64
	Omega        float64
	Pi           [4]float64
	GTR          codon.GTR

	GapOpen   float64
	GapExtend float64
	GapLen    int
	Amb       dp.AmbPolicy

	WeightFile string // optional score log, appended as CSV
	SampleSize int
	Seed       string
	TreePath   string // guide tree for the msa operation

	// Stdin and Stdout default to the process streams; tests override
	// them.
	Stdin  io.Reader
	Stdout io.Writer
}

// DefaultOptions returns the repository defaults: the marginal MG94
// model at the default branch length with the default gap model.
func DefaultOptions() Options {
	return Options{
		Model:        "m-coati",
		BranchLength: codon.DefaultBranchLength,
		Omega:        codon.DefaultOmega,
		Pi:           codon.DefaultPi,
		GapOpen:      dp.DefaultGapOpen,
		GapExtend:    dp.DefaultGapExtend,
		GapLen:       dp.DefaultGapLen,
		SampleSize:   1,
	}
}

// ParseAmbPolicy maps the CLI spelling of an ambiguity policy to its
// enum value.
func ParseAmbPolicy(s string) (dp.AmbPolicy, error) {
	switch s {
	case "avg", "":
		return dp.AmbAvg, nil
	case "best":
		return dp.AmbBest, nil
	}
	return 0, errs.Newf(errs.InvalidInput, "unknown ambiguity policy %q", s)
}

func (o Options) gapParams() dp.Params {
	return dp.Params{
		GapOpen:   o.GapOpen,
		GapExtend: o.GapExtend,
		GapLen:    o.GapLen,
		Amb:       o.Amb,
	}
}
