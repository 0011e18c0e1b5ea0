package main

import (
	"encoding/csv"
	"os"
	"sort"

	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/pkg/errors"
)

// StatMap maps stat name to raw stat value. Values are never coerced
// to numbers here; downstream consumers decide interpretation.
type StatMap map[string]string

// Update merges other into m, later writes winning on collision. The
// tool suites are not expected to emit overlapping names, but the
// policy is deliberate, not accidental.
func (m StatMap) Update(other StatMap) {
	for k, v := range other {
		m[k] = v
	}
}

// FinalTable is the consolidated run result: one row per successful
// sample, columns the sorted union of every stat name seen.
type FinalTable struct {
	Samples []string
	Columns []string
	Rows    map[string]StatMap
}

// buildFinalTable folds per-sample stat maps into one table. order
// fixes the row order (sheet order); samples absent from results are
// skipped. A sample missing a column gets an empty cell.
func buildFinalTable(results map[string]StatMap, order []string) *FinalTable {
	t := &FinalTable{Rows: make(map[string]StatMap)}
	colSet := make(map[string]bool)
	for _, sample := range order {
		stats, ok := results[sample]
		if !ok {
			continue
		}
		t.Samples = append(t.Samples, sample)
		t.Rows[sample] = stats
		for name := range stats {
			colSet[name] = true
		}
	}
	for name := range colSet {
		t.Columns = append(t.Columns, name)
	}
	sort.Strings(t.Columns)
	return t
}

// WriteCSV serializes the table comma-delimited, samples as rows, the
// first column headed Sample.
func (t *FinalTable) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create final stats file")
	}
	defer simple_util.DeferClose(f)

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"Sample"}, t.Columns...)); err != nil {
		return errors.Wrap(err, "write final stats header")
	}
	for _, sample := range t.Samples {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, sample)
		for _, col := range t.Columns {
			row = append(row, t.Rows[sample][col])
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "write final stats row for %s", sample)
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush final stats")
}
