package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/liserjrqlxue/goUtil/textUtil"
	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/pkg/errors"
)

// SampleRecord is one row of the sample sheet. All paths are relative
// to the base directory. Immutable once read.
type SampleRecord struct {
	Sample    string `csv:"Sample"`
	FwdRead   string `csv:"Forward Read Path"`
	RevRead   string `csv:"Reverse Read Path"`
	Adapter   string `csv:"Adapter Path"`
	Reference string `csv:"Reference Path"`
}

// parseSampleSheet reads a comma-delimited sheet, or a tab-delimited
// one when the file ends in .tsv, and rejects duplicate sample IDs and
// rows with missing columns.
func parseSampleSheet(path string) ([]SampleRecord, error) {
	var records []SampleRecord
	var err error
	if strings.HasSuffix(path, ".tsv") {
		records, err = parseTSVSheet(path)
	} else {
		records, err = parseCSVSheet(path)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Errorf("sample sheet %s has no sample rows", path)
	}

	seen := make(map[string]bool)
	for i, rec := range records {
		if rec.Sample == "" || rec.FwdRead == "" || rec.RevRead == "" ||
			rec.Adapter == "" || rec.Reference == "" {
			return nil, errors.Errorf(
				"sample sheet %s row %d: missing required column", path, i+1)
		}
		if seen[rec.Sample] {
			return nil, errors.Errorf(
				"sample sheet %s: dup sample:%s", path, rec.Sample)
		}
		seen[rec.Sample] = true
	}
	return records, nil
}

func parseCSVSheet(path string) ([]SampleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open sample sheet")
	}
	defer simple_util.DeferClose(f)

	var records []SampleRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, errors.Wrapf(err, "parse sample sheet %s", path)
	}
	return records, nil
}

func parseTSVSheet(path string) ([]SampleRecord, error) {
	rows, title := textUtil.File2MapArray(path, "\t", nil)
	for _, key := range []string{
		"Sample", "Forward Read Path", "Reverse Read Path",
		"Adapter Path", "Reference Path",
	} {
		if !stringInSlice(key, title) {
			return nil, errors.Errorf(
				"sample sheet %s: missing column %q", path, key)
		}
	}
	var records []SampleRecord
	for _, item := range rows {
		records = append(records, SampleRecord{
			Sample:    item["Sample"],
			FwdRead:   item["Forward Read Path"],
			RevRead:   item["Reverse Read Path"],
			Adapter:   item["Adapter Path"],
			Reference: item["Reference Path"],
		})
	}
	return records, nil
}

// validateInputs checks that every referenced input file exists under
// baseDir before any sample starts processing.
func validateInputs(records []SampleRecord, baseDir string) error {
	for _, rec := range records {
		for _, rel := range []string{
			rec.FwdRead, rec.RevRead, rec.Adapter, rec.Reference,
		} {
			pth := filepath.Join(baseDir, rel)
			if !simple_util.FileExists(pth) {
				return errors.Errorf(
					"sample %s: input file not found: %s", rec.Sample, pth)
			}
		}
	}
	return nil
}

func stringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}
