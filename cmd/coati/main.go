/*

Coati aligns pairs of coding DNA sequences under a codon-aware
substitution model with an affine indel model.

The basic usage looks like this:

	coati align pair.fasta -o aligned.fasta

Scoring a pre-aligned pair, sampling alternative alignments and a
progressive multiple alignment over a guide tree are available as
subcommands:

	coati score aligned.fasta
	coati sample pair.fasta --sample-size 10 --seed 42
	coati msa seqs.fasta --tree guide.nwk --ref A

To see all the options run:

	coati -h

*/
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/op/go-logging"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/reedacartwright/coati/align"
	"github.com/reedacartwright/coati/codon"
	"github.com/reedacartwright/coati/dp"
)

// Logger settings.
var log = logging.MustGetLogger("coati")
var formatter = logging.MustStringFormatter(`%{message}`)

// command-line options
var (
	app = kingpin.New("coati", "codon-aware pairwise sequence aligner")

	logLevel = app.Flag("loglevel", "set loglevel "+
		"('critical', 'error', 'warning', 'notice', 'info', 'debug')").
		Default("notice").
		Enum("critical", "error", "warning", "notice", "info", "debug")

	alignCmd  = app.Command("align", "align two sequences (default)").Default()
	scoreCmd  = app.Command("score", "score a pre-aligned sequence pair")
	sampleCmd = app.Command("sample", "sample alignments from the posterior")
	msaCmd    = app.Command("msa", "progressive multiple alignment over a guide tree")

	sampleSize = sampleCmd.Flag("sample-size", "number of alignments to sample").Default("1").Int()
	seed       = sampleCmd.Flag("seed", "random generator seed string").Default("").String()
	treeFile   = msaCmd.Flag("tree", "guide tree in newick format").Required().ExistingFile()
)

// common declares the flags every subcommand shares and binds them to
// one Options value per command.
type common struct {
	input     *string
	inputFlag *string
	model     *string
	output    *string
	weight    *string
	ref       *string
	rev       *bool
	gapOpen   *float64
	gapExtend *float64
	gapLen    *int
	amb       *string
	rate      *string
	brLen     *float64
	omega     *float64
}

func declareCommon(cmd *kingpin.CmdClause) *common {
	c := &common{}
	c.input = cmd.Arg("input", "input sequence file (fasta, phylip or json)").String()
	c.inputFlag = cmd.Flag("file", "input sequence file").Short('f').String()
	c.model = cmd.Flag("model", "substitution model: coati, m-coati, mg94, marginal, dna, ecm, m-ecm").
		Short('m').Default("m-coati").String()
	c.output = cmd.Flag("output", "output file (.fa, .fasta, .phy or .json; '-' for stdout)").Short('o').String()
	c.weight = cmd.Flag("weight", "append the alignment score to this file").Short('w').String()
	c.ref = cmd.Flag("ref", "name of the reference sequence").String()
	c.rev = cmd.Flag("rev", "use the second sequence as the reference").Bool()
	c.gapOpen = cmd.Flag("gap-open", "gap opening probability").Default("0.001").Float64()
	c.gapExtend = cmd.Flag("gap-extend", "gap extension probability").
		Default(strconv.FormatFloat(dp.DefaultGapExtend, 'g', -1, 64)).Float64()
	c.gapLen = cmd.Flag("gap-len", "gap unit length (1 or 3)").Default("1").Int()
	c.amb = cmd.Flag("amb", "ambiguous nucleotide scoring policy (avg or best)").Default("avg").Enum("avg", "best")
	c.rate = cmd.Flag("rate", "substitution rate matrix CSV (overrides --model)").String()
	c.brLen = cmd.Flag("branch-length", "branch length between the sequences").
		Default(align.FormatWeight(codon.DefaultBranchLength)).Float64()
	c.omega = cmd.Flag("omega", "nonsynonymous/synonymous rate ratio").
		Default(align.FormatWeight(codon.DefaultOmega)).Float64()
	return c
}

func (c *common) options() (align.Options, error) {
	o := align.DefaultOptions()
	o.InputPath = *c.input
	if o.InputPath == "" {
		o.InputPath = *c.inputFlag
	}
	o.Model = *c.model
	o.OutputPath = *c.output
	o.WeightFile = *c.weight
	o.Ref = *c.ref
	o.Rev = *c.rev
	o.GapOpen = *c.gapOpen
	o.GapExtend = *c.gapExtend
	o.GapLen = *c.gapLen
	o.RateCSV = *c.rate
	o.BranchLength = *c.brLen
	o.Omega = *c.omega
	amb, err := align.ParseAmbPolicy(*c.amb)
	if err != nil {
		return o, err
	}
	o.Amb = amb
	return o, nil
}

var (
	alignFlags  = declareCommon(alignCmd)
	scoreFlags  = declareCommon(scoreCmd)
	sampleFlags = declareCommon(sampleCmd)
	msaFlags    = declareCommon(msaCmd)
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// logging
	logging.SetFormatter(formatter)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	logging.SetBackend(backend)

	level, err := logging.LogLevel(*logLevel)
	if err != nil {
		log.Fatal(err)
	}
	logging.SetLevel(level, "coati")
	logging.SetLevel(level, "align")

	if err := run(command); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(command string) error {
	switch command {
	case alignCmd.FullCommand():
		o, err := alignFlags.options()
		if err != nil {
			return err
		}
		_, weight, err := align.Align(o)
		if err != nil {
			return err
		}
		log.Infof("alignment weight: %s", align.FormatWeight(weight))
		return nil

	case scoreCmd.FullCommand():
		o, err := scoreFlags.options()
		if err != nil {
			return err
		}
		_, err = align.Score(o)
		return err

	case sampleCmd.FullCommand():
		o, err := sampleFlags.options()
		if err != nil {
			return err
		}
		o.SampleSize = *sampleSize
		o.Seed = *seed
		return align.Sample(o)

	case msaCmd.FullCommand():
		o, err := msaFlags.options()
		if err != nil {
			return err
		}
		o.TreePath = *treeFile
		_, err = align.Msa(o)
		return err
	}
	return nil
}
