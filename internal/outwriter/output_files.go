package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repometrics/internal/contract"
	"github.com/huangsam/repometrics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintFiles outputs ranked file records, dispatching on cfg.Output.
func PrintFiles(files []*schema.FileRecord, cfg *contract.Config, duration time.Duration) error {
	_, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rankFiles(files))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, rankFiles(files))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFilesCSV(w, files, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFilesTable(w, files, cfg, intFmt, duration)
		}, "Wrote table")
	}
}

// rankedFile is the structured form of one file row. Authors are flattened
// into a sorted list so the output is stable.
type rankedFile struct {
	Rank        int                         `json:"rank" yaml:"rank"`
	Path        string                      `json:"path" yaml:"path"`
	LinesOfCode int                         `json:"lines_of_code" yaml:"lines_of_code"`
	Churn       int                         `json:"churn" yaml:"churn"`
	Additions   int                         `json:"additions" yaml:"additions"`
	Deletions   int                         `json:"deletions" yaml:"deletions"`
	CommitCount int                         `json:"commit_count" yaml:"commit_count"`
	Authors     []schema.AuthorContribution `json:"authors" yaml:"authors"`
}

func rankFiles(files []*schema.FileRecord) []rankedFile {
	out := make([]rankedFile, len(files))
	for i, f := range files {
		out[i] = rankedFile{
			Rank:        i + 1,
			Path:        f.Path,
			LinesOfCode: f.LinesOfCode,
			Churn:       f.Churn,
			Additions:   f.Additions,
			Deletions:   f.Deletions,
			CommitCount: f.CommitCount,
			Authors:     schema.FlattenAuthors(f.Authors),
		}
	}
	return out
}

func writeFilesTable(w io.Writer, files []*schema.FileRecord, cfg *contract.Config, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Path", "LOC", "Churn", "Commits"}
	if cfg.Detail {
		headers = append(headers, "Added", "Deleted", "Authors")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	var data [][]string
	totalChurn := 0
	for i, f := range files {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(f.Path, pathWidth),
			fmt.Sprintf(intFmt, f.LinesOfCode),
			fmt.Sprintf(intFmt, f.Churn),
			fmt.Sprintf(intFmt, f.CommitCount),
		}
		if cfg.Detail {
			row = append(row,
				fmt.Sprintf(intFmt, f.Additions),
				fmt.Sprintf(intFmt, f.Deletions),
				schema.FormatAuthors(schema.FlattenAuthors(f.Authors), tableAuthors),
			)
		}
		totalChurn += f.Churn
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing top %d files (total churn: %d)\n", len(files), totalChurn); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scan completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend)
	return err
}

func writeFilesCSV(w io.Writer, files []*schema.FileRecord, intFmt string) error {
	header := []string{
		"rank",
		"path",
		"lines_of_code",
		"churn",
		"additions",
		"deletions",
		"commit_count",
		"authors",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, f := range files {
			authors := schema.FlattenAuthors(f.Authors)
			identities := make([]string, len(authors))
			for j, a := range authors {
				identities[j] = a.Identity
			}
			row := []string{
				strconv.Itoa(i + 1),
				f.Path,
				fmt.Sprintf(intFmt, f.LinesOfCode),
				fmt.Sprintf(intFmt, f.Churn),
				fmt.Sprintf(intFmt, f.Additions),
				fmt.Sprintf(intFmt, f.Deletions),
				fmt.Sprintf(intFmt, f.CommitCount),
				strings.Join(identities, "|"),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
