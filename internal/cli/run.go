package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/lay"
	"github.com/aretw0/lay/internal/logging"
	"github.com/aretw0/lay/internal/presentation/tui"
	"github.com/aretw0/lay/pkg/program"
	"github.com/aretw0/lay/pkg/recorder"
	"golang.org/x/term"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Backend  BackendOptions
	Program  string
	Store    StoreOptions
	LogLevel string
	JSON     bool
	Style    string

	Stdout io.Writer
	Stderr io.Writer
}

// Execute loads the program, runs it and prints the result.
func Execute(opts RunOptions) error {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	logger, err := createLogger(stderr, opts.LogLevel)
	if err != nil {
		return err
	}

	p, err := program.Load(opts.Program)
	if err != nil {
		return err
	}

	if opts.Backend.Echo == nil {
		opts.Backend.Echo = stderr
	}
	run, err := newRunner(opts.Backend)
	if err != nil {
		return err
	}

	runOpts := []lay.Option{lay.WithLogger(logger), lay.WithName(opts.Backend.Kind)}
	if opts.Store.configured() {
		store, closeStore, err := openStore(opts.Store, nil)
		if err != nil {
			return err
		}
		defer closeStore()
		runOpts = append(runOpts, lay.WithRecorder(recorder.New(store, recorder.WithLogger(logger))))
	}

	res, runErr := run(p, runOpts...)
	if err := printResult(stdout, res, opts); err != nil {
		return err
	}
	return runErr
}

func printResult(w io.Writer, res lay.Result, opts RunOptions) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if !isTerminal(w) {
		_, err := fmt.Fprintln(w, res.Bits)
		return err
	}
	out, err := tui.RenderReport(res, opts.Style)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// createLogger configures the application logger. Logs always go to stderr
// so that stdout carries only results.
func createLogger(w io.Writer, level string) (*slog.Logger, error) {
	if level == "" {
		return logging.NewNop(), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(w, lvl, logging.FormatText), nil
}
