// Package fasta reads and writes FASTA sequence files.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/errs"
)

// wrapWidth is the column at which written sequences wrap.
const wrapWidth = 60

// Read parses FASTA records: lines starting with ';' are comments, '>'
// starts a record and every following line up to the next '>' or EOF
// belongs to its sequence. Whitespace is stripped and sequences are
// uppercased; mixed line endings are tolerated.
func Read(rd io.Reader) (bio.Sequences, error) {
	var seqs bio.Sequences
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			seqs = append(seqs, bio.Sequence{Name: strings.TrimSpace(line[1:])})
			continue
		}
		if len(seqs) == 0 {
			return nil, errs.New(errs.InvalidInput, "sequence data before the first '>' header")
		}
		seqs[len(seqs)-1].Seq += bio.Clean(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.Io, "reading fasta input", err)
	}
	return seqs, nil
}

// Write renders sequences as FASTA, wrapping at 60 columns.
func Write(w io.Writer, seqs bio.Sequences) error {
	var b strings.Builder
	for _, s := range seqs {
		b.WriteByte('>')
		b.WriteString(s.Name)
		b.WriteByte('\n')
		b.WriteString(wrap(s.Seq, wrapWidth))
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return errs.Wrap(errs.Io, "writing fasta output", err)
	}
	return nil
}

// wrap splits seq into newline-terminated lines of at most n
// characters.
func wrap(seq string, n int) string {
	var b strings.Builder
	for i := 0; i < len(seq); i += n {
		end := i + n
		if end > len(seq) {
			end = len(seq)
		}
		b.WriteString(seq[i:end])
		b.WriteByte('\n')
	}
	return b.String()
}
