package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// refFastaSuffix is the suffix the reference genome must carry; the
// sequence dictionary path is derived by swapping it for .dict.
const refFastaSuffix = ".fasta"

// DirExistsError reports an output directory collision. Runs never
// resume: a fresh output root or fresh sample names are required.
type DirExistsError struct {
	Dir string
}

func (e *DirExistsError) Error() string {
	return fmt.Sprintf("output directory already exists: %s", e.Dir)
}

// PathSet names every file one sample's pipeline reads or writes.
// Built once per sample before the first stage; read-only afterwards.
// Each derived entry is written by exactly one stage.
type PathSet struct {
	OutputBase string

	// inputs, resolved against the base directory
	FwdRead string
	RevRead string
	Adapter string
	Ref     string

	// shared reference artifacts (per reference, not per sample)
	RefDict string

	// trimmomatic outputs
	FwdTrimmed  string
	RevTrimmed  string
	FwdUnpaired string
	RevUnpaired string

	// alignment
	SAM          string
	BAM          string
	ReadGroupBAM string

	// variant calling
	Pileup      string
	VCF         string
	FilteredVCF string
	Consensus   string

	// reports
	VCFStats      string
	Flagstat      string
	WgsMetrics    string
	SizeMetrics   string
	SizeHistogram string
}

// checkOutputCollisions rejects the whole run before any sample starts
// when a per-sample output directory already exists. Runs never resume.
func checkOutputCollisions(records []SampleRecord, baseDir string) error {
	for _, rec := range records {
		outBase := filepath.Join(baseDir, "Output", rec.Sample)
		if _, err := os.Stat(outBase); err == nil {
			return &DirExistsError{Dir: outBase}
		}
	}
	return nil
}

// planPaths derives the full path set for one sample and creates its
// output directory. All derivation is deterministic suffixing, so a
// re-run reproduces identical paths (and fails on the existing
// directory). Trimmed and unpaired reads live under the sample's own
// output directory so no two samples can ever share a derived path.
func planPaths(rec SampleRecord, baseDir string) (*PathSet, error) {
	outBase := filepath.Join(baseDir, "Output", rec.Sample)
	if _, err := os.Stat(outBase); err == nil {
		return nil, &DirExistsError{Dir: outBase}
	}
	if err := os.MkdirAll(outBase, 0755); err != nil {
		return nil, errors.Wrapf(err, "create output dir for %s", rec.Sample)
	}

	ref := filepath.Join(baseDir, rec.Reference)
	if !strings.HasSuffix(rec.Reference, refFastaSuffix) {
		return nil, errors.Errorf(
			"reference %s does not end in %s, can not derive dictionary path",
			rec.Reference, refFastaSuffix)
	}
	refDict := strings.TrimSuffix(ref, refFastaSuffix) + ".dict"

	s := rec.Sample
	return &PathSet{
		OutputBase: outBase,

		FwdRead: filepath.Join(baseDir, rec.FwdRead),
		RevRead: filepath.Join(baseDir, rec.RevRead),
		Adapter: filepath.Join(baseDir, rec.Adapter),
		Ref:     ref,
		RefDict: refDict,

		FwdTrimmed:  filepath.Join(outBase, s+".trimmed_1.fastq"),
		RevTrimmed:  filepath.Join(outBase, s+".trimmed_2.fastq"),
		FwdUnpaired: filepath.Join(outBase, s+".unpaired_1.fastq"),
		RevUnpaired: filepath.Join(outBase, s+".unpaired_2.fastq"),

		SAM:          filepath.Join(outBase, s+".sam"),
		BAM:          filepath.Join(outBase, s+".bam"),
		ReadGroupBAM: filepath.Join(outBase, s+".readgroup.bam"),

		Pileup:      filepath.Join(outBase, s+".pileup.bcf"),
		VCF:         filepath.Join(outBase, s+".vcf"),
		FilteredVCF: filepath.Join(outBase, s+".filtered.vcf.gz"),
		Consensus:   filepath.Join(outBase, s+".consensus.fasta"),

		VCFStats:      filepath.Join(outBase, s+".vcf.stats.txt"),
		Flagstat:      filepath.Join(outBase, s+".flagstat.txt"),
		WgsMetrics:    filepath.Join(outBase, s+".picard_wgs.txt"),
		SizeMetrics:   filepath.Join(outBase, s+".picard_size.txt"),
		SizeHistogram: filepath.Join(outBase, s+".picard_size_hist.pdf"),
	}, nil
}
