package phylip

import (
	"strings"
	"testing"

	"github.com/reedacartwright/coati/bio"
)

func TestWriteFormat(t *testing.T) {
	long := strings.Repeat("ACGT", 26) // 104 characters
	var b strings.Builder
	err := Write(&b, bio.Sequences{
		{Name: "anc", Seq: long},
		{Name: "des", Seq: long},
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if lines[0] != "2 104" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "anc       ") || len(lines[1]) != 60 {
		t.Errorf("first record line = %q", lines[1])
	}
	if lines[3] != "" {
		t.Errorf("expected blank line between blocks, got %q", lines[3])
	}
	if len(lines[4]) != 50 || len(lines[7]) != 4 {
		t.Errorf("continuation blocks = %q / %q", lines[4], lines[7])
	}
}

func TestWriteTruncatesLongNames(t *testing.T) {
	var b strings.Builder
	err := Write(&b, bio.Sequences{{Name: "test-sequence-name", Seq: "ACGT"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "1 4\ntest-seque") {
		t.Errorf("got %q", b.String())
	}
}

func TestRoundTrip(t *testing.T) {
	long := strings.Repeat("ACGT", 26)
	seqs := bio.Sequences{
		{Name: "anc", Seq: long},
		{Name: "des", Seq: strings.Repeat("TGCA", 26)},
	}
	var b strings.Builder
	if err := Write(&b, seqs); err != nil {
		t.Fatal(err)
	}
	got, err := Read(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records", len(got))
	}
	for i := range seqs {
		if got[i] != seqs[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], seqs[i])
		}
	}
}

func TestReadRejectsBadHeader(t *testing.T) {
	for _, bad := range []string{"", "x y\n", "2\n"} {
		if _, err := Read(strings.NewReader(bad)); err == nil {
			t.Errorf("Read(%q) succeeded, want error", bad)
		}
	}
}
