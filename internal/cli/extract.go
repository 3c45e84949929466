package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declmeta/internal/backend"
	"github.com/mvp-joe/declmeta/internal/config"
	"github.com/mvp-joe/declmeta/internal/discovery"
	"github.com/mvp-joe/declmeta/internal/output"
)

// ErrNoFiles is returned when the arguments expand to no source files.
var ErrNoFiles = errors.New("no TypeScript files found")

// extractOptions holds the flags shared by extract and watch. Empty values
// fall back to the loaded configuration.
type extractOptions struct {
	backend string
	format  string
	out     string
	quiet   bool
}

// resolved returns the backend name and output format to use.
func (o extractOptions) resolved(c *config.Config) (string, string, error) {
	name := o.backend
	if name == "" {
		name = c.Extract.Backend
	}

	format := o.format
	if format == "" {
		format = output.FormatFor(o.out, c.Output.Format)
	}
	format = strings.ToLower(format)
	if format != config.FormatJSON && format != config.FormatYAML {
		return "", "", fmt.Errorf("%w: %q (want json or yaml)", output.ErrUnknownFormat, format)
	}
	return name, format, nil
}

var extractOpts extractOptions

var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Extract declaration metadata from files and directories",
	Long: `Extract reads the given files and directories (default: the current
directory) and prints one aggregated metadata document.

Directories are expanded through the include and ignore patterns from the
configuration. Files named explicitly are always extracted.

Examples:
  # Extract the current project as JSON
  declmeta extract

  # Extract two files with the component-aware backend as YAML
  declmeta extract --backend syntactic --format yaml src/App.tsx src/hooks.ts

  # Write the result to a file without progress output
  declmeta extract src --out build/meta.json --quiet`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addExtractFlags(extractCmd, &extractOpts)
}

func addExtractFlags(cmd *cobra.Command, opts *extractOptions) {
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", "", "extraction backend: semantic, syntactic or auto (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json or yaml (default from --out extension or config)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the result to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "disable progress bars and non-error output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if len(args) == 0 {
		args = []string{"."}
	}
	_, err := extract(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, extractOpts, args)
	return err
}

// extract runs one extraction over args and writes the result to stdout or
// opts.out. It returns the paths that were skipped.
func extract(ctx context.Context, stdout, stderr io.Writer, c *config.Config, opts extractOptions, args []string) ([]string, error) {
	if c == nil {
		c = config.Default()
	}
	name, format, err := opts.resolved(c)
	if err != nil {
		return nil, err
	}

	matcher, err := discovery.NewMatcher(c.Extract.Include, c.Extract.Ignore)
	if err != nil {
		return nil, err
	}
	paths, err := matcher.Expand(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, strings.Join(args, ", "))
	}

	log := newLogger(stderr, c, opts.quiet)
	progress := newProgressReporter(stderr, opts.quiet)
	ex, err := backend.New(name, backend.Options{Logger: log, OnFile: progress.onFile})
	if err != nil {
		return nil, err
	}

	progress.begin(len(paths))
	md, err := ex.Extract(ctx, paths)
	progress.finish()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("extraction cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	if opts.out == "" {
		if err := output.Encode(stdout, md, format, c.Output.Indent); err != nil {
			return nil, err
		}
	} else if err := output.WriteFile(opts.out, md, format, c.Output.Indent); err != nil {
		return nil, err
	}
	progress.summary(opts.out)
	return progress.skippedFiles(), nil
}
