package align

import (
	"os"
	"strings"

	"github.com/reedacartwright/coati/bio"
	"github.com/reedacartwright/coati/dp"
	"github.com/reedacartwright/coati/errs"
	"github.com/reedacartwright/coati/tree"
)

// Msa reads a guide tree and one sequence per leaf, reroots the tree
// at the reference, and composes pairwise alignments along the
// alignment order into a multiple alignment. No alignment algorithm
// beyond the pairwise DP is involved: each new leaf is aligned against
// the previously placed leaf at the branch length the order walk
// accumulated, and the resulting gaps are folded into the growing
// alignment column-wise.
func Msa(o Options) (bio.Sequences, error) {
	if o.TreePath == "" {
		return nil, errs.New(errs.InvalidInput, "msa requires a guide tree")
	}
	if o.Ref == "" {
		return nil, errs.New(errs.InvalidInput, "msa requires a reference sequence name")
	}

	f, err := os.Open(o.TreePath)
	if err != nil {
		return nil, errs.Wrap(errs.Io, "opening tree file", err)
	}
	t, err := tree.Parse(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	if err := t.Reroot(o.Ref); err != nil {
		return nil, err
	}

	seqs, err := readInput(o)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(seqs))
	for _, s := range seqs {
		byName[s.Name] = s.Seq
	}
	if t.NLeaves() != len(seqs) {
		return nil, errs.Newf(errs.InvalidInput, "tree has %d leaves but input has %d sequences",
			t.NLeaves(), len(seqs))
	}

	order, err := t.AlignmentOrder()
	if err != nil {
		return nil, err
	}
	for _, step := range order {
		if _, ok := byName[t[step.Leaf].Label]; !ok {
			return nil, errs.Newf(errs.InvalidInput, "leaf %q has no sequence in the input", t[step.Leaf].Label)
		}
	}

	// Seed pair.
	prev := t[order[0].Leaf].Label
	next := t[order[1].Leaf].Label
	pair, err := alignPair(o, byName[prev], byName[next], order[1].Distance)
	if err != nil {
		return nil, err
	}
	msa := bio.Sequences{
		{Name: prev, Seq: pair.Anc},
		{Name: next, Seq: pair.Des},
	}
	prev = next

	for _, step := range order[2:] {
		label := t[step.Leaf].Label
		pair, err := alignPair(o, byName[prev], byName[label], step.Distance)
		if err != nil {
			return nil, err
		}
		msa, err = mergeRow(msa, prev, pair.Anc, label, pair.Des)
		if err != nil {
			return nil, err
		}
		prev = label
	}

	if err := writeOutput(o, msa); err != nil {
		return nil, err
	}
	return msa, nil
}

// alignPair runs one pairwise DP at the given branch length. A
// non-positive distance (zero-length branches in the guide tree) falls
// back to the configured default branch length.
func alignPair(o Options, anc, des string, dist float64) (*dp.Alignment, error) {
	if dist <= 0 {
		dist = o.BranchLength
	}
	po := o
	po.BranchLength = dist
	model, err := buildModel(po)
	if err != nil {
		return nil, err
	}
	in, err := dp.NewInput(anc, des, model, o.gapParams())
	if err != nil {
		return nil, err
	}
	return dp.ViterbiMem(in)
}

// mergeRow folds a pairwise alignment (anchorAln, newAln) into the
// multiple alignment via the anchor's existing row: gap columns
// present on one side but not the other are inserted on the side that
// lacks them, so previously placed rows are never re-aligned.
func mergeRow(msa bio.Sequences, anchorName, anchorAln, newName, newAln string) (bio.Sequences, error) {
	anchorIdx := -1
	for i, s := range msa {
		if s.Name == anchorName {
			anchorIdx = i
			break
		}
	}
	if anchorIdx < 0 {
		return nil, errs.Newf(errs.InvalidInput, "anchor %q is not in the alignment", anchorName)
	}

	r := msa[anchorIdx].Seq
	rows := make([]strings.Builder, len(msa))
	var added strings.Builder
	i, j := 0, 0
	for i < len(r) || j < len(anchorAln) {
		switch {
		case i < len(r) && bio.IsGap(r[i]) && (j >= len(anchorAln) || !bio.IsGap(anchorAln[j])):
			// Gap column the earlier rows already carry.
			for k := range msa {
				rows[k].WriteByte(msa[k].Seq[i])
			}
			added.WriteByte('-')
			i++
		case j < len(anchorAln) && bio.IsGap(anchorAln[j]) && (i >= len(r) || !bio.IsGap(r[i])):
			// The new pairwise alignment inserted into the anchor:
			// open a gap column across the earlier rows.
			for k := range rows {
				rows[k].WriteByte('-')
			}
			added.WriteByte(newAln[j])
			j++
		default:
			for k := range msa {
				rows[k].WriteByte(msa[k].Seq[i])
			}
			added.WriteByte(newAln[j])
			i++
			j++
		}
	}

	out := make(bio.Sequences, 0, len(msa)+1)
	for k, s := range msa {
		out = append(out, bio.Sequence{Name: s.Name, Seq: rows[k].String()})
	}
	out = append(out, bio.Sequence{Name: newName, Seq: added.String()})
	return out, nil
}
