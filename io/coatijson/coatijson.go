// Package coatijson reads and writes the JSON alignment interchange
// shape {"data":{"names":[...],"seqs":[...]}} and the line-oriented
// JSON array emitted by the sample operation.
package coatijson

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
)

type document struct {
	Data payload `json:"data"`
}

type payload struct {
	Names []string `json:"names"`
	Seqs  []string `json:"seqs"`
}

// Read parses the {"data":{...}} document into sequences.
func Read(rd io.Reader) (bio.Sequences, error) {
	var doc document
	dec := json.NewDecoder(rd)
	if err := dec.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.InvalidInput, "bad json input", err)
	}
	if len(doc.Data.Names) != len(doc.Data.Seqs) {
		return nil, errs.Newf(errs.InvalidInput, "json input has %d names but %d seqs",
			len(doc.Data.Names), len(doc.Data.Seqs))
	}
	seqs := make(bio.Sequences, len(doc.Data.Names))
	for i := range seqs {
		seqs[i] = bio.Sequence{Name: doc.Data.Names[i], Seq: bio.Clean(doc.Data.Seqs[i])}
	}
	return seqs, nil
}

// Write renders sequences as a single-line {"data":{...}} document.
func Write(w io.Writer, seqs bio.Sequences) error {
	doc := document{Data: payload{
		Names: make([]string, len(seqs)),
		Seqs:  make([]string, len(seqs)),
	}}
	for i, s := range seqs {
		doc.Data.Names[i] = s.Name
		doc.Data.Seqs[i] = s.Seq
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return errs.Wrap(errs.Io, "encoding json output", err)
	}
	out = append(out, '\n')
	if _, err := w.Write(out); err != nil {
		return errs.Wrap(errs.Io, "writing json output", err)
	}
	return nil
}

// Sample is one sampled alignment with its posterior weight.
type Sample struct {
	Names     [2]string
	Seqs      [2]string
	LogWeight float64
}

// WriteSamples renders sampled alignments in the fixed line-by-line
// array shape the sample operation emits.
func WriteSamples(w io.Writer, samples []Sample) error {
	write := func(s string) error {
		_, err := io.WriteString(w, s)
		if err != nil {
			return errs.Wrap(errs.Io, "writing sample output", err)
		}
		return nil
	}
	if err := write("[\n"); err != nil {
		return err
	}
	for i, s := range samples {
		if err := write("  {\n    \"aln\": {\n"); err != nil {
			return err
		}
		for k := 0; k < 2; k++ {
			name, err := json.Marshal(s.Names[k])
			if err != nil {
				return errs.Wrap(errs.Io, "encoding sample output", err)
			}
			seq, err := json.Marshal(s.Seqs[k])
			if err != nil {
				return errs.Wrap(errs.Io, "encoding sample output", err)
			}
			sep := ",\n"
			if k == 1 {
				sep = "\n"
			}
			if err := write(fmt.Sprintf("      %s: %s%s", name, seq, sep)); err != nil {
				return err
			}
		}
		closer := "  },\n"
		if i == len(samples)-1 {
			closer = "  }\n"
		}
		if err := write(fmt.Sprintf("    },\n    \"weight\": %s,\n    \"log_weight\": %s\n%s",
			formatWeight(math.Exp(s.LogWeight)), formatWeight(s.LogWeight), closer)); err != nil {
			return err
		}
	}
	return write("]\n")
}

// formatWeight renders a weight with six significant digits, the way
// the rest of the toolchain prints scores.
func formatWeight(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
