// Package ratecsv reads a user-supplied codon substitution rate
// matrix: one branch-length line followed by exactly 4096
// "codon,codon,rate" lines covering every ordered codon pair once.
package ratecsv

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/skelterjohn/go.matrix"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
)

// Read parses the CSV into the instantaneous rate matrix Q and the
// branch length from the first line. Exponentiation is left to the
// model layer.
func Read(rd io.Reader) (q *matrix.DenseMatrix, brlen float64, err error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1

	rec, err := r.Read()
	if err != nil {
		return nil, 0, errs.Wrap(errs.InvalidInput, "missing branch-length line in rate matrix", err)
	}
	if len(rec) != 1 {
		return nil, 0, errs.Newf(errs.InvalidInput, "rate matrix must start with a branch-length line, got %v", rec)
	}
	brlen, err = strconv.ParseFloat(rec[0], 64)
	if err != nil {
		return nil, 0, errs.Wrap(errs.InvalidInput, "bad branch length in rate matrix", err)
	}

	q = matrix.Zeros(bio.NCodon, bio.NCodon)
	var seen [bio.NCodon][bio.NCodon]bool
	count := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, errs.Wrap(errs.InvalidInput, "bad rate matrix line", err)
		}
		if len(rec) != 3 {
			return nil, 0, errs.Newf(errs.InvalidInput, "rate matrix line must have 3 fields, got %d", len(rec))
		}
		src, err := bio.CodonOf(rec[0])
		if err != nil {
			return nil, 0, err
		}
		dst, err := bio.CodonOf(rec[1])
		if err != nil {
			return nil, 0, err
		}
		rate, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, 0, errs.Wrap(errs.InvalidInput, "bad rate value in rate matrix", err)
		}
		if seen[src][dst] {
			return nil, 0, errs.Newf(errs.InvalidInput, "duplicate rate matrix entry %s,%s", rec[0], rec[1])
		}
		seen[src][dst] = true
		q.Set(src, dst, rate)
		count++
	}
	if count != bio.NCodon*bio.NCodon {
		return nil, 0, errs.Newf(errs.InvalidInput, "rate matrix has %d entries, want %d", count, bio.NCodon*bio.NCodon)
	}
	return q, brlen, nil
}
