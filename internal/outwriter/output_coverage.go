package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
)

// maxUncoveredListed caps the uncovered methods printed in text mode unless
// --detail is set.
const maxUncoveredListed = 10

// PrintCoverage explains how the coverage for one path was resolved.
func PrintCoverage(report schema.CoverageReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCoverageCSV(w, report, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCoverageText(w, report, cfg, duration)
		}, "Wrote report")
	}
}

func writeCoverageText(w io.Writer, report schema.CoverageReport, cfg *contract.Config, duration time.Duration) error {
	lines := []string{
		fmt.Sprintf("Path: %s", report.Path),
		fmt.Sprintf("Coverage: %s (%s) [%s]", schema.FormatCoverage(report.Coverage, cfg.Precision),
			report.CoverageSource, coverageLabel(report.Coverage, cfg)),
		fmt.Sprintf("  Heuristic: %s", schema.FormatCoverage(report.Heuristic, cfg.Precision)),
		fmt.Sprintf("  Pipeline:  %s", schema.FormatCoverage(report.Pipeline, cfg.Precision)),
		fmt.Sprintf("Source files: %d, test files: %d", report.SourceFiles, report.TestFiles),
		fmt.Sprintf("Methods: %d referenced of %d", report.CoveredMethods, report.TotalMethods),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(report.Uncovered) > 0 {
		listed := report.Uncovered
		if !cfg.Detail && len(listed) > maxUncoveredListed {
			listed = listed[:maxUncoveredListed]
		}
		if _, err := fmt.Fprintln(w, "Unreferenced methods:"); err != nil {
			return err
		}
		for _, m := range listed {
			if _, err := fmt.Fprintf(w, "  - %s\n", m); err != nil {
				return err
			}
		}
		if rest := len(report.Uncovered) - len(listed); rest > 0 {
			if _, err := fmt.Fprintf(w, "  ... and %d more (use --detail to list all)\n", rest); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "Scan completed in %v\n", duration)
	return err
}

func writeCoverageCSV(w io.Writer, report schema.CoverageReport, fmtFloat func(float64) string, intFmt string) error {
	optional := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmtFloat(*v)
	}
	header := []string{
		"path",
		"coverage",
		"coverage_source",
		"label",
		"heuristic",
		"pipeline",
		"source_files",
		"test_files",
		"total_methods",
		"covered_methods",
		"uncovered_count",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		return cw.Write([]string{
			report.Path,
			optional(report.Coverage),
			string(report.CoverageSource),
			contract.GetPlainLabel(report.Coverage),
			optional(report.Heuristic),
			optional(report.Pipeline),
			fmt.Sprintf(intFmt, report.SourceFiles),
			fmt.Sprintf(intFmt, report.TestFiles),
			fmt.Sprintf(intFmt, report.TotalMethods),
			fmt.Sprintf(intFmt, report.CoveredMethods),
			strconv.Itoa(len(report.Uncovered)),
		})
	})
}
