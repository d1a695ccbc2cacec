// Package phylip reads and writes interleaved PHYLIP alignments with
// 10-column labels and 50-column sequence blocks.
package phylip

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
)

const (
	labelWidth = 10
	blockWidth = 50
)

// Write renders the alignment: a "<N> <L>" header, then the first
// block with 10-column labels, then label-less 50-column blocks each
// preceded by a blank line.
func Write(w io.Writer, seqs bio.Sequences) error {
	if len(seqs) == 0 {
		return errs.New(errs.InvalidInput, "no sequences to write")
	}
	length := len(seqs[0].Seq)
	for _, s := range seqs {
		if len(s.Seq) != length {
			return errs.Newf(errs.InvalidInput, "sequence %q length %d differs from %d", s.Name, len(s.Seq), length)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %d\n", len(seqs), length)
	for _, s := range seqs {
		name := s.Name
		if len(name) > labelWidth {
			name = name[:labelWidth]
		}
		fmt.Fprintf(&b, "%-*s%s\n", labelWidth, name, chunk(s.Seq, 0))
	}
	for off := blockWidth; off < length; off += blockWidth {
		b.WriteByte('\n')
		for _, s := range seqs {
			b.WriteString(chunk(s.Seq, off))
			b.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errs.Wrap(errs.Io, "writing phylip output", err)
	}
	return nil
}

func chunk(seq string, off int) string {
	end := off + blockWidth
	if end > len(seq) {
		end = len(seq)
	}
	if off >= len(seq) {
		return ""
	}
	return seq[off:end]
}

// Read parses the interleaved format Write produces.
func Read(rd io.Reader) (bio.Sequences, error) {
	scanner := bufio.NewScanner(rd)
	if !scanner.Scan() {
		return nil, errs.New(errs.InvalidInput, "empty phylip input")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) != 2 {
		return nil, errs.Newf(errs.InvalidInput, "bad phylip header %q", scanner.Text())
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return nil, errs.Newf(errs.InvalidInput, "bad sequence count in phylip header %q", scanner.Text())
	}

	seqs := make(bio.Sequences, 0, n)
	for len(seqs) < n && scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line == "" {
			continue
		}
		if len(line) < labelWidth {
			return nil, errs.Newf(errs.InvalidInput, "phylip record line %q shorter than the label width", line)
		}
		seqs = append(seqs, bio.Sequence{
			Name: strings.TrimSpace(line[:labelWidth]),
			Seq:  bio.Clean(line[labelWidth:]),
		})
	}
	if len(seqs) != n {
		return nil, errs.Newf(errs.InvalidInput, "phylip header names %d sequences, found %d", n, len(seqs))
	}

	idx := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			idx = 0
			continue
		}
		if idx >= n {
			return nil, errs.New(errs.InvalidInput, "phylip continuation block has too many lines")
		}
		seqs[idx].Seq += bio.Clean(line)
		idx++
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.Io, "reading phylip input", err)
	}
	return seqs, nil
}
