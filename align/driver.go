package align

import (
	"fmt"
	"os"
	"strconv"

	"github.com/op/go-logging"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/codon"
	"github.com/reedacartwright/coati/dp"
	"github.com/reedacartwright/coati/errs"
	"github.com/reedacartwright/coati/io/coatijson"
	"github.com/reedacartwright/coati/io/ratecsv"
)

var log = logging.MustGetLogger("align")

// Align reads a sequence pair, aligns it with the memory-efficient
// Viterbi variant and writes the result. It returns the aligned pair
// and the alignment log-weight.
func Align(o Options) (bio.Sequences, float64, error) {
	seqs, model, err := prepare(o)
	if err != nil {
		return nil, 0, err
	}
	in, err := dp.NewInput(seqs[0].Seq, seqs[1].Seq, model, o.gapParams())
	if err != nil {
		return nil, 0, err
	}
	aln, err := dp.ViterbiMem(in)
	if err != nil {
		return nil, 0, err
	}
	out := bio.Sequences{
		{Name: seqs[0].Name, Seq: aln.Anc},
		{Name: seqs[1].Name, Seq: aln.Des},
	}
	if err := writeOutput(o, out); err != nil {
		return nil, 0, err
	}
	if err := appendWeight(o, aln.Weight); err != nil {
		return nil, 0, err
	}
	return out, aln.Weight, nil
}

// Score replays a pre-aligned pair and prints its log-weight to
// stdout.
func Score(o Options) (float64, error) {
	seqs, model, err := prepare(o)
	if err != nil {
		return 0, err
	}
	w, err := dp.Score(seqs[0].Seq, seqs[1].Seq, model, o.gapParams())
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(o.stdout(), FormatWeight(w))
	return w, nil
}

// Sample runs the forward pass and draws SampleSize alignments from
// the posterior, writing them as a JSON array.
func Sample(o Options) error {
	seqs, model, err := prepare(o)
	if err != nil {
		return err
	}
	in, err := dp.NewInput(seqs[0].Seq, seqs[1].Seq, model, o.gapParams())
	if err != nil {
		return err
	}
	fwd, err := dp.Forward(in)
	if err != nil {
		return err
	}
	rng := dp.NewRand(o.Seed)
	samples := make([]coatijson.Sample, o.SampleSize)
	for i := range samples {
		aln := fwd.Sampleback(rng)
		samples[i] = coatijson.Sample{
			Names:     [2]string{seqs[0].Name, seqs[1].Name},
			Seqs:      [2]string{aln.Anc, aln.Des},
			LogWeight: aln.Weight,
		}
	}

	if o.OutputPath == "" || o.OutputPath == "-" {
		return coatijson.WriteSamples(o.stdout(), samples)
	}
	f, err := os.Create(o.OutputPath)
	if err != nil {
		return errs.Wrap(errs.Io, "creating output file", err)
	}
	defer f.Close()
	return coatijson.WriteSamples(f, samples)
}

// prepare runs the shared front half of every operation: read input,
// validate the pair, build the model and put the reference first.
func prepare(o Options) (bio.Sequences, *codon.Model, error) {
	seqs, err := readInput(o)
	if err != nil {
		return nil, nil, err
	}
	if len(seqs) != 2 {
		return nil, nil, errs.Newf(errs.InvalidInput, "exactly two sequences required, got %d", len(seqs))
	}
	model, err := buildModel(o)
	if err != nil {
		return nil, nil, err
	}
	if err := orderRef(seqs, o.Ref, o.Rev); err != nil {
		return nil, nil, err
	}
	return seqs, model, nil
}

// buildModel constructs the substitution model, from the rate-matrix
// CSV when one is configured, otherwise from the named model.
func buildModel(o Options) (*codon.Model, error) {
	if o.RateCSV != "" {
		f, err := os.Open(o.RateCSV)
		if err != nil {
			return nil, errs.Wrap(errs.Io, "opening rate matrix file", err)
		}
		defer f.Close()
		q, brlen, err := ratecsv.Read(f)
		if err != nil {
			return nil, err
		}
		log.Infof("using rate matrix from %s with branch length %v; --branch-length is ignored", o.RateCSV, brlen)
		return codon.BuildModelFromRates(q, brlen, o.Pi)
	}
	return codon.BuildModel(codon.Params{
		Name:         o.Model,
		BranchLength: o.BranchLength,
		Omega:        o.Omega,
		Pi:           o.Pi,
		GTR:          o.GTR,
	})
}

// orderRef reorders a pair in place so the reference is first: a Ref
// naming the second sequence swaps, a Ref naming the first is a no-op,
// no match with Rev set swaps, and no match without Rev fails.
func orderRef(seqs bio.Sequences, ref string, rev bool) error {
	if ref == "" && !rev {
		return nil
	}
	switch {
	case ref != "" && seqs[0].Name == ref:
		// already first
	case ref != "" && seqs[1].Name == ref:
		seqs[0], seqs[1] = seqs[1], seqs[0]
	case rev:
		seqs[0], seqs[1] = seqs[1], seqs[0]
	default:
		return errs.Newf(errs.InvalidInput, "reference %q not found", ref)
	}
	return nil
}

// appendWeight appends "input_path,model,weight" to the configured
// score log; an empty path skips the log.
func appendWeight(o Options, weight float64) error {
	if o.WeightFile == "" {
		return nil
	}
	f, err := os.OpenFile(o.WeightFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return errs.Wrap(errs.Io, "opening weight file", err)
	}
	defer f.Close()
	model := o.Model
	if o.RateCSV != "" {
		model = "user"
	}
	if _, err := fmt.Fprintf(f, "%s,%s,%s\n", o.InputPath, model, FormatWeight(weight)); err != nil {
		return errs.Wrap(errs.Io, "writing weight file", err)
	}
	return nil
}

// FormatWeight renders a log-weight with six significant digits, the
// precision scores are reported at everywhere.
func FormatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', 6, 64)
}
