package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/lumipallolabs/dirsizer/internal/core"
	"github.com/lumipallolabs/dirsizer/internal/logging"
	"github.com/lumipallolabs/dirsizer/internal/model"
	"github.com/lumipallolabs/dirsizer/internal/prefs"
	"github.com/lumipallolabs/dirsizer/internal/scanner"
	"github.com/lumipallolabs/dirsizer/internal/ui"
)

// Exit codes
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitNoRootSelected = 2
	ExitRootUnreadable = 3
	ExitCancelled      = 130
)

// Execute runs the command line and returns the process exit code
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewRootCommand(version).ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	code := ExitCode(err)
	if code != ExitCancelled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return code
}

// ExitCode maps an error to the process exit code
func ExitCode(err error) int {
	switch core.KindOf(err) {
	case core.KindNone:
		return ExitOK
	case core.KindNoRootSelected:
		return ExitNoRootSelected
	case core.KindRootUnreadable:
		return ExitRootUnreadable
	case core.KindCancelled:
		return ExitCancelled
	default:
		return ExitFailure
	}
}

func run(ctx context.Context, opts Options) error {
	return runWithPrefs(ctx, opts, prefs.DefaultPath(), os.Stdout)
}

// runWithPrefs runs one invocation with preferences stored at prefsPath and
// plain output written to out
func runWithPrefs(ctx context.Context, opts Options, prefsPath string, out io.Writer) error {
	prefsMgr := prefs.NewManager(prefsPath)
	if err := prefsMgr.Load(); err != nil {
		logging.Debug.Printf("Failed to load prefs: %v", err)
	}
	defer func() {
		if err := prefsMgr.Close(); err != nil {
			logging.Debug.Printf("Failed to save prefs: %v", err)
		}
	}()

	if opts.Path == "" {
		opts.Path = prefsMgr.LastRoot()
	}
	if opts.sortChanged {
		prefsMgr.SetSort(opts.Sort.String())
	} else if saved := prefsMgr.Sort(); saved != "" {
		if key, err := model.ParseSortKey(saved); err == nil {
			opts.Sort = key
		}
	}

	ctrl := core.NewController(scanner.NewWalker(opts.Scan))

	if opts.Output == OutputTUI {
		return ui.Run(ctx, ui.Config{
			Controller: ctrl,
			Prefs:      prefsMgr,
			Root:       opts.Path,
			Sort:       opts.Sort,
		})
	}

	result, err := scanPlain(ctx, ctrl, opts)
	if err != nil {
		return err
	}
	prefsMgr.SetLastRoot(result.Root)

	for _, w := range result.Warnings {
		logging.Scanner.Printf("warning: %v", w)
	}

	entries := model.Sort(result.Entries, opts.Sort)
	if opts.Output == OutputJSON {
		return PrintJSON(result, entries, opts.Sort, out)
	}
	return PrintTable(result, entries, out)
}

// scanPlain runs one scan, drawing a progress line on stderr when it is a terminal
func scanPlain(ctx context.Context, ctrl *core.Controller, opts Options) (*model.ScanResult, error) {
	enableProgress := !opts.Debug && isatty.IsTerminal(os.Stderr.Fd())

	events, err := ctrl.Start(ctx, opts.Path)
	if err != nil {
		return nil, err
	}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")
	}

	var (
		result  *model.ScanResult
		scanErr error
	)

	for ev := range events {
		switch ev := ev.(type) {
		case core.ScanStartedEvent:
			if enableProgress {
				fmt.Fprintf(os.Stderr, "\r\033[2KCounting directories in %s…\r", ev.Root)
			}
		case core.ScanProgressEvent:
			if enableProgress {
				fmt.Fprintf(os.Stderr, "\r\033[2KMeasuring… %s/%s directories (%.0f%%)\r",
					humanize.Comma(int64(ev.Progress.Completed)),
					humanize.Comma(int64(ev.Progress.Total)),
					100*ev.Progress.Fraction())
			}
		case core.ScanCompletedEvent:
			result = ev.Result
		case core.ScanCancelledEvent:
			scanErr = context.Canceled
		case core.ErrorEvent:
			scanErr = ev.Err
		}
	}

	// Clear the status line
	if enableProgress {
		fmt.Fprint(os.Stderr, "\r\033[2K\r")
	}

	if scanErr != nil {
		return nil, scanErr
	}
	return result, nil
}
