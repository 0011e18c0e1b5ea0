package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetHeader = "Sample,Forward Read Path,Reverse Read Path,Adapter Path,Reference Path\n"

func TestParseSampleSheetCSV(t *testing.T) {
	sheet := sheetHeader +
		"s1,reads/s1_1.fastq.gz,reads/s1_2.fastq.gz,adapters.fasta,ref/genome.fasta\n" +
		"s2,reads/s2_1.fastq.gz,reads/s2_2.fastq.gz,adapters.fasta,ref/genome.fasta\n"
	path := writeFile(t, t.TempDir(), "samples.csv", sheet)

	records, err := parseSampleSheet(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, SampleRecord{
		Sample:    "s1",
		FwdRead:   "reads/s1_1.fastq.gz",
		RevRead:   "reads/s1_2.fastq.gz",
		Adapter:   "adapters.fasta",
		Reference: "ref/genome.fasta",
	}, records[0])
	assert.Equal(t, "s2", records[1].Sample)
}

func TestParseSampleSheetTSV(t *testing.T) {
	sheet := "Sample\tForward Read Path\tReverse Read Path\tAdapter Path\tReference Path\n" +
		"s1\treads/s1_1.fastq.gz\treads/s1_2.fastq.gz\tadapters.fasta\tref/genome.fasta\n"
	path := writeFile(t, t.TempDir(), "samples.tsv", sheet)

	records, err := parseSampleSheet(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "reads/s1_2.fastq.gz", records[0].RevRead)
}

func TestParseSampleSheetDuplicateSample(t *testing.T) {
	sheet := sheetHeader +
		"s1,a_1.fq.gz,a_2.fq.gz,ad.fasta,ref.fasta\n" +
		"s1,b_1.fq.gz,b_2.fq.gz,ad.fasta,ref.fasta\n"
	path := writeFile(t, t.TempDir(), "samples.csv", sheet)

	_, err := parseSampleSheet(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dup sample:s1")
}

func TestParseSampleSheetMissingColumn(t *testing.T) {
	sheet := "Sample,Forward Read Path,Reverse Read Path,Reference Path\n" +
		"s1,a_1.fq.gz,a_2.fq.gz,ref.fasta\n"
	path := writeFile(t, t.TempDir(), "samples.csv", sheet)

	_, err := parseSampleSheet(path)
	assert.Error(t, err)
}

func TestParseSampleSheetEmpty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "samples.csv", sheetHeader)
	_, err := parseSampleSheet(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sample rows")
}

func TestValidateInputs(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "reads"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "ref"), 0755))
	for _, name := range []string{
		"reads/s1_1.fastq.gz", "reads/s1_2.fastq.gz",
		"adapters.fasta", "ref/genome.fasta",
	} {
		writeFile(t, base, name, "")
	}

	rec := sampleRecord("s1")
	require.NoError(t, validateInputs([]SampleRecord{rec}, base))

	rec.RevRead = "reads/absent.fastq.gz"
	err := validateInputs([]SampleRecord{rec}, base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.fastq.gz")
}
