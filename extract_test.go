package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractVCFStats(t *testing.T) {
	report := "# This file was produced by bcftools stats\n" +
		"ID\t0\tsample.filtered.vcf.gz\n" +
		"SN\t0\tnumber of samples:\t1\n" +
		"SN\t0\tnumber of SNPs:\t42\n" +
		"SN\t0\tnumber of MNPs:\t3\n" +
		"SN\t0\tnumber of indels:\t5\n" +
		"SN\t0\tnumber of unrelatedstat:\t7\n" +
		"SN\t0\tnumber of multiallelic sites:\t2\n"
	path := writeFile(t, t.TempDir(), "stats.txt", report)

	stats, err := extractVCFStats(path)
	require.NoError(t, err)
	assert.Equal(t, StatMap{
		"number of SNPs":               "42",
		"number of MNPs":               "3",
		"number of indels":             "5",
		"number of multiallelic sites": "2",
	}, stats)
	// allow-list filtering, not zero-filling
	assert.NotContains(t, stats, "number of unrelatedstat")
	assert.NotContains(t, stats, "number of samples")
	assert.NotContains(t, stats, "number of others")
}

func TestExtractVCFStatsEmptyReport(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stats.txt", "# nothing tagged here\n")
	stats, err := extractVCFStats(path)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestExtractVCFStatsMissingFile(t *testing.T) {
	_, err := extractVCFStats(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestExtractMetricsReport(t *testing.T) {
	report := "## htsjdk.samtools.metrics.StringHeader\n" +
		"# CollectWgsMetrics COVERAGE_CAP=100000\n" +
		"\n" +
		"## METRICS CLASS\tpicard.analysis.WgsMetrics\n" +
		"A\tB\n" +
		"1\t2\n" +
		"\n" +
		"## HISTOGRAM\tjava.lang.Integer\n" +
		"coverage\tcount\n"
	path := writeFile(t, t.TempDir(), "wgs.txt", report)

	stats, err := extractMetricsReport(path)
	require.NoError(t, err)
	assert.Equal(t, StatMap{"A": "1", "B": "2"}, stats)
}

func TestExtractMetricsReportFieldCountMismatch(t *testing.T) {
	report := "## METRICS CLASS\tpicard.analysis.WgsMetrics\n" +
		"A\tB\tC\n" +
		"1\t2\n" +
		"\n"
	path := writeFile(t, t.TempDir(), "wgs.txt", report)

	_, err := extractMetricsReport(path)
	require.Error(t, err)
	var malformed *MalformedReportError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, path, malformed.Path)
}

func TestExtractMetricsReportTruncatedSection(t *testing.T) {
	for name, report := range map[string]string{
		"no marker":   "A\tB\n1\t2\n",
		"header only": "## METRICS CLASS\tpicard.analysis.WgsMetrics\nA\tB\n\n",
	} {
		path := writeFile(t, t.TempDir(), "wgs.txt", report)
		_, err := extractMetricsReport(path)
		var malformed *MalformedReportError
		assert.ErrorAs(t, err, &malformed, name)
	}
}

func TestExtractMetricsReportValuesStayRaw(t *testing.T) {
	report := "## METRICS CLASS\tpicard.analysis.InsertSizeMetrics\n" +
		"MEDIAN_INSERT_SIZE\tMEAN_INSERT_SIZE\n" +
		"296\t297.437803\n" +
		"\n"
	path := writeFile(t, t.TempDir(), "size.txt", report)

	stats, err := extractMetricsReport(path)
	require.NoError(t, err)
	assert.Equal(t, "297.437803", stats["MEAN_INSERT_SIZE"])
}
