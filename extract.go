package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	simple_util "github.com/liserjrqlxue/simple-util"
	"github.com/pkg/errors"
)

// MalformedReportError reports a stage report that does not match the
// shape its extraction rule expects. Non-retryable: the report will not
// change without rerunning the stage.
type MalformedReportError struct {
	Path   string
	Reason string
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("malformed report %s: %s", e.Path, e.Reason)
}

// vcfStatTag marks the summary-number lines of a bcftools stats report.
const vcfStatTag = "SN"

// metricsMarker opens the section of a picard report that carries the
// single header/value row pair. Matched as a prefix: picard appends
// the metrics class name on the same line.
const metricsMarker = "## METRICS CLASS"

// vcfStatsOfInterest is the allow-list of summary numbers carried into
// the final table, colon-terminated as they appear in the report.
var vcfStatsOfInterest = map[string]bool{
	"number of SNPs:":                   true,
	"number of MNPs:":                   true,
	"number of indels:":                 true,
	"number of others:":                 true,
	"number of multiallelic sites:":     true,
	"number of multiallelic SNP sites:": true,
}

// extractVCFStats scans a bcftools stats report for SN-tagged lines.
// Each is tab-split; the second-to-last field is the stat name, the
// last its value. Only allow-listed names are kept, with the trailing
// colon stripped; an absent stat is simply omitted. Values stay raw
// strings.
func extractVCFStats(path string) (StatMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open vcf stats report")
	}
	defer simple_util.DeferClose(f)

	stats := make(StatMap)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, vcfStatTag) {
			continue
		}
		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) < 2 {
			continue
		}
		name := parts[len(parts)-2]
		if vcfStatsOfInterest[name] {
			stats[strings.TrimSuffix(name, ":")] = parts[len(parts)-1]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return stats, nil
}

// extractMetricsReport scans a picard report for the metrics section:
// the first line after the marker is the header row, the second the
// value row, capture stopping at the first blank line. The result is
// the positional zip of header to value fields, kept as raw strings.
func extractMetricsReport(path string) (StatMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open metrics report")
	}
	defer simple_util.DeferClose(f)

	var captured [][]string
	keep := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if keep {
			if strings.TrimSpace(line) == "" {
				break
			}
			captured = append(captured, strings.Split(strings.TrimSpace(line), "\t"))
			continue
		}
		if strings.HasPrefix(line, metricsMarker) {
			keep = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	if len(captured) < 2 {
		return nil, &MalformedReportError{
			Path:   path,
			Reason: fmt.Sprintf("metrics section has %d lines, want header and value rows", len(captured)),
		}
	}
	header, values := captured[0], captured[1]
	if len(header) != len(values) {
		return nil, &MalformedReportError{
			Path: path,
			Reason: fmt.Sprintf("header has %d fields but value row has %d",
				len(header), len(values)),
		}
	}

	stats := make(StatMap, len(header))
	for i, name := range header {
		stats[name] = values[i]
	}
	return stats, nil
}
