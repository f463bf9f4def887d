package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/dirsizer/internal/logging"
	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/scanner"
)

// Output formats
const (
	OutputTUI   = "tui"
	OutputTable = "table"
	OutputJSON  = "json"
)

// Options holds parsed command-line flags
type Options struct {
	Path   string
	Sort   model.SortKey
	Output string
	Scan   scanner.Options
	Debug  bool

	sortStr     string
	sortChanged bool
}

// NewRootCommand builds the dirsizer command
func NewRootCommand(version string) *cobra.Command {
	var opts Options
	opts.Scan = scanner.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "dirsizer [flags] [path]",
		Short: "Measure the size of every directory below a root",
		Long: heredoc.Doc(`
			dirsizer measures how much space every directory below a root takes.

			It first counts the directories, then sizes each one, reporting
			progress as it goes. The results can be sorted by path or by size.

			If path is omitted, the root of the previous scan is used.

			Output formats:
			  tui    interactive view with a table and a treemap (default on a terminal)
			  table  plain text table
			  json   machine-readable result
		`),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Debug {
				logging.Enable(os.Stderr)
			}
			return validate(cmd, args, &opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVarP(&opts.sortStr, "sort", "s", "size", "Sort order: size or path")
	flags.StringVarP(&opts.Output, "output", "o", "", "Output format: tui, table or json (default tui on a terminal, else table)")
	flags.IntVarP(&opts.Scan.Workers, "workers", "w", opts.Scan.Workers, "Directories measured concurrently")
	flags.IntVar(&opts.Scan.WalkWorkers, "walk-workers", 0, "Walk goroutines per measured directory (0 = automatic)")
	flags.BoolVarP(&opts.Scan.FollowSymlinks, "follow-symlinks", "L", false, "Follow symbolic links")
	flags.BoolVarP(&opts.Scan.OneFileSystem, "one-file-system", "x", false, "Do not cross file system boundaries")
	flags.BoolVar(&opts.Scan.DiskUsage, "disk-usage", false, "Count allocated blocks instead of apparent size")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug output on stderr")

	return cmd
}

func validate(cmd *cobra.Command, args []string, opts *Options) error {
	if len(args) == 1 {
		opts.Path = args[0]
	}

	key, err := model.ParseSortKey(opts.sortStr)
	if err != nil {
		return err
	}
	opts.Sort = key

	if opts.Output == "" {
		opts.Output = defaultOutput()
	}
	opts.Output = strings.ToLower(opts.Output)
	allowed := []string{OutputTUI, OutputTable, OutputJSON}
	if !slices.Contains(allowed, opts.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", opts.Output, allowed)
	}

	if opts.Scan.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if opts.Scan.WalkWorkers < 0 {
		return errors.New("walk-workers cannot be negative")
	}

	// An explicit --sort overrides the saved preference
	opts.sortChanged = cmd.Flags().Changed("sort")
	return nil
}

func defaultOutput() string {
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return OutputTUI
	}
	return OutputTable
}
