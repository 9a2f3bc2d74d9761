package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/repometrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() schema.CoverageReport {
	return schema.CoverageReport{
		Path:           "svc",
		Coverage:       floatPtr(50),
		CoverageSource: schema.HeuristicCoverage,
		Heuristic:      floatPtr(50),
		Pipeline:       floatPtr(71.5),
		SourceFiles:    2,
		TestFiles:      1,
		TotalMethods:   4,
		CoveredMethods: 2,
		Uncovered:      []string{"svc/Orders.cs:Add", "svc/Orders.cs:Remove"},
	}
}

func TestPrintCoverage_Text(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.txt")
	require.NoError(t, PrintCoverage(sampleReport(), testConfig(schema.TextOut, path), time.Second))

	out := readOutput(t, path)
	assert.Contains(t, out, "Path: svc")
	assert.Contains(t, out, "Coverage: 50.00% (heuristic) [Fair]")
	assert.Contains(t, out, "Pipeline:  71.50%")
	assert.Contains(t, out, "Methods: 2 referenced of 4")
	assert.Contains(t, out, "  - svc/Orders.cs:Remove")
	assert.NotContains(t, out, "more (use --detail")
}

func TestPrintCoverage_TextTruncatesUncovered(t *testing.T) {
	report := sampleReport()
	report.Uncovered = nil
	for i := range 13 {
		report.Uncovered = append(report.Uncovered, fmt.Sprintf("svc/A.cs:M%d", i))
	}

	path := filepath.Join(t.TempDir(), "coverage.txt")
	require.NoError(t, PrintCoverage(report, testConfig(schema.TextOut, path), time.Second))
	out := readOutput(t, path)
	assert.Contains(t, out, "svc/A.cs:M9")
	assert.NotContains(t, out, "svc/A.cs:M10")
	assert.Contains(t, out, "... and 3 more")

	cfg := testConfig(schema.TextOut, path)
	cfg.Detail = true
	require.NoError(t, PrintCoverage(report, cfg, time.Second))
	assert.Contains(t, readOutput(t, path), "svc/A.cs:M12")
}

func TestPrintCoverage_TextUndefined(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.txt")
	report := schema.CoverageReport{Path: ".", CoverageSource: schema.NoCoverage}
	require.NoError(t, PrintCoverage(report, testConfig(schema.TextOut, path), time.Second))
	out := readOutput(t, path)
	assert.Contains(t, out, "Coverage: - (none) [n/a]")
	assert.NotContains(t, out, "Unreferenced methods")
}

func TestPrintCoverage_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.csv")
	require.NoError(t, PrintCoverage(sampleReport(), testConfig(schema.CSVOut, path), time.Second))

	records, err := csv.NewReader(strings.NewReader(readOutput(t, path))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"svc", "50.00", "heuristic", "Fair", "50.00", "71.50", "2", "1", "4", "2", "2"}, records[1])
}

func TestPrintCoverage_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coverage.json")
	require.NoError(t, PrintCoverage(sampleReport(), testConfig(schema.JSONOut, path), time.Second))

	var decoded schema.CoverageReport
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, path)), &decoded))
	assert.Equal(t, sampleReport(), decoded)
}
