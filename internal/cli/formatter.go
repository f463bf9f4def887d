package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/lumipallolabs/dirsizer/internal/model"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
)

type jsonWarning struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type jsonReport struct {
	Root       string                 `json:"root"`
	Sort       string                 `json:"sort"`
	TotalBytes uint64                 `json:"total_bytes"`
	Elapsed    string                 `json:"elapsed"`
	Entries    []model.DirectoryEntry `json:"entries"`
	Warnings   []jsonWarning          `json:"warnings"`
}

// PrintJSON outputs the result in JSON format with entries in the given order.
func PrintJSON(result *model.ScanResult, entries []model.DirectoryEntry, key model.SortKey, writer io.Writer) error {
	report := jsonReport{
		Root:       result.Root,
		Sort:       key.String(),
		TotalBytes: result.TotalSize(),
		Elapsed:    result.Elapsed.Round(time.Millisecond).String(),
		Entries:    entries,
		Warnings:   make([]jsonWarning, 0, len(result.Warnings)),
	}
	if report.Entries == nil {
		report.Entries = []model.DirectoryEntry{}
	}
	for _, w := range result.Warnings {
		report.Warnings = append(report.Warnings, jsonWarning{Path: w.Path, Error: w.Err.Error()})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the result as a human-readable table.
func PrintTable(result *model.ScanResult, entries []model.DirectoryEntry, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', tabwriter.AlignRight)

	total := result.TotalSize()

	fmt.Fprintln(w, "SIZE\tSHARE\t PATH")
	for _, e := range entries {
		share := "-"
		if total > 0 {
			share = fmt.Sprintf("%.1f%%", 100*float64(e.SizeBytes)/float64(total))
		}
		fmt.Fprintf(w, "%s\t%s\t %s\n", humanize.IBytes(e.SizeBytes), share, e.Path)
	}

	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(writer, "\nTotal: %s in %s directories under %s (%v)\n",
		humanize.IBytes(total), humanize.Comma(int64(len(entries))), result.Root,
		result.Elapsed.Round(time.Millisecond))

	if n := len(result.Warnings); n > 0 {
		_, err := fmt.Fprintf(writer, "%s %s could not be read and counted as empty\n",
			humanize.Comma(int64(n)), plural(n, "entry", "entries"))
		return err
	}

	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
