package coatijson

import (
	"math"
	"strings"
	"testing"

	"github.com/reedacartwright/coati/bio"
)

func TestReadWrite(t *testing.T) {
	in := `{"data":{"names":["a","b"],"seqs":["CTCTGGATAGTC","CTCTGGATAGTC"]}}`
	seqs, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(seqs) != 2 || seqs[0].Name != "a" || seqs[1].Seq != "CTCTGGATAGTC" {
		t.Fatalf("got %+v", seqs)
	}

	var b strings.Builder
	if err := Write(&b, seqs); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(b.String()) != in {
		t.Errorf("Write = %q, want %q", b.String(), in)
	}
}

func TestReadMismatchedLengths(t *testing.T) {
	in := `{"data":{"names":["a"],"seqs":["ACGT","ACGT"]}}`
	if _, err := Read(strings.NewReader(in)); err == nil {
		t.Error("expected error for mismatched names/seqs")
	}
}

func TestRoundTrip(t *testing.T) {
	seqs := bio.Sequences{
		{Name: "anc", Seq: "CTCTGGATAGTG"},
		{Name: "des", Seq: "CT----ATAGTG"},
	}
	var b strings.Builder
	if err := Write(&b, seqs); err != nil {
		t.Fatal(err)
	}
	got, err := Read(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	for i := range seqs {
		if got[i] != seqs[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], seqs[i])
		}
	}
}

func TestWriteSamplesShape(t *testing.T) {
	samples := []Sample{
		{Names: [2]string{"A", "B"}, Seqs: [2]string{"CC--CCCC", "CCCCCCCC"}, LogWeight: -3.46609},
		{Names: [2]string{"A", "B"}, Seqs: [2]string{"CCCCCC--", "CCCCCCCC"}, LogWeight: -0.69344},
	}
	var b strings.Builder
	if err := WriteSamples(&b, samples); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"[",
		"  {",
		`    "aln": {`,
		`      "A": "CC--CCCC",`,
		`      "B": "CCCCCCCC"`,
		"    },",
		`    "weight": ` + formatWeight(math.Exp(-3.46609)) + ",",
		`    "log_weight": -3.46609`,
		"  },",
		"  {",
		`    "aln": {`,
		`      "A": "CCCCCC--",`,
		`      "B": "CCCCCCCC"`,
		"    },",
		`    "weight": ` + formatWeight(math.Exp(-0.69344)) + ",",
		`    "log_weight": -0.69344`,
		"  }",
		"]",
	}
	got := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), b.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
