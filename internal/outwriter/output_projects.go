package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// tableAuthors caps the identities shown in the Authors column.
const tableAuthors = 3

// PrintProjects outputs per-project metrics, dispatching on cfg.Output.
func PrintProjects(projects []schema.ProjectMetrics, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, labelProjects(projects))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, labelProjects(projects))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectsCSV(w, projects, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeProjectsTable(w, projects, cfg, intFmt, duration)
		}, "Wrote table")
	}
}

type labeledProject struct {
	Label                 string `json:"label" yaml:"label"`
	schema.ProjectMetrics `yaml:",inline"`
}

func labelProjects(projects []schema.ProjectMetrics) []labeledProject {
	out := make([]labeledProject, len(projects))
	for i, p := range projects {
		out[i] = labeledProject{Label: contract.GetPlainLabel(p.Coverage), ProjectMetrics: p}
	}
	return out
}

func writeProjectsTable(w io.Writer, projects []schema.ProjectMetrics, cfg *contract.Config, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Project", "LOC", "Churn", "Commits", "Files", "Coverage", "Source", "Label"}
	if cfg.Detail {
		headers = append(headers, "Authors")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	for _, p := range projects {
		row := []string{
			contract.TruncatePath(p.Path, pathWidth),
			fmt.Sprintf(intFmt, p.LinesOfCode),
			fmt.Sprintf(intFmt, p.Churn),
			fmt.Sprintf(intFmt, p.CommitCount),
			fmt.Sprintf(intFmt, p.FileCount),
			schema.FormatCoverage(p.Coverage, cfg.Precision),
			string(p.CoverageSource),
			coverageLabel(p.Coverage, cfg),
		}
		if cfg.Detail {
			row = append(row, schema.FormatAuthors(p.Authors, tableAuthors))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d projects since %s\n", len(projects), cfg.Since); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scan completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

func writeProjectsCSV(w io.Writer, projects []schema.ProjectMetrics, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"project",
		"lines_of_code",
		"churn",
		"commit_count",
		"file_count",
		"coverage",
		"coverage_source",
		"label",
		"authors",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, p := range projects {
			coverage := ""
			if p.Coverage != nil {
				coverage = fmtFloat(*p.Coverage)
			}
			row := []string{
				p.Path,
				fmt.Sprintf(intFmt, p.LinesOfCode),
				fmt.Sprintf(intFmt, p.Churn),
				fmt.Sprintf(intFmt, p.CommitCount),
				fmt.Sprintf(intFmt, p.FileCount),
				coverage,
				string(p.CoverageSource),
				contract.GetPlainLabel(p.Coverage),
				formatAuthorsCSV(p.Authors),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// formatAuthorsCSV joins every identity with its churn as "id:churn" pairs.
func formatAuthorsCSV(authors []schema.AuthorContribution) string {
	out := ""
	for i, a := range authors {
		if i > 0 {
			out += "|"
		}
		out += fmt.Sprintf("%s:%d", a.Identity, a.Churn())
	}
	return out
}
