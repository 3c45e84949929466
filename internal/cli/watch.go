package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declmeta/internal/config"
	"github.com/mvp-joe/declmeta/internal/discovery"
	"github.com/mvp-joe/declmeta/internal/watcher"
)

var watchOpts extractOptions

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Re-extract a directory whenever its sources change",
	Long: `Watch extracts the directory once, then watches it and rewrites the
output file after every debounced batch of changes. The whole tree is
re-extracted each time so cross-file types stay current.

Example:
  declmeta watch src --out build/meta.json`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addExtractFlags(watchCmd, &watchOpts)
	watchCmd.MarkFlagRequired("out")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return watch(ctx, cmd.ErrOrStderr(), cfg, watchOpts, args[0], nil)
}

// watch blocks until ctx is cancelled. onBatch, when set, is called after
// each re-extraction with the changed files and the extraction error.
func watch(ctx context.Context, stderr io.Writer, c *config.Config, opts extractOptions, dir string, onBatch func(changed []string, err error)) error {
	if c == nil {
		c = config.Default()
	}
	if opts.out == "" {
		return errors.New("watch requires --out")
	}
	log := newLogger(stderr, c, opts.quiet)

	if _, err := extract(ctx, io.Discard, stderr, c, opts, []string{dir}); err != nil && !errors.Is(err, ErrNoFiles) {
		return fmt.Errorf("initial extraction failed: %w", err)
	}

	matcher, err := discovery.NewMatcher(c.Extract.Include, c.Extract.Ignore)
	if err != nil {
		return err
	}
	w, err := watcher.New(dir, matcher, watcher.Options{Debounce: c.Watch.Debounce, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	defer w.Stop()

	// Progress bars would interleave with the log on every batch.
	batchOpts := opts
	batchOpts.quiet = true

	log.Info("watching for changes", "dir", dir, "out", opts.out)
	w.Start(ctx, func(changed []string) {
		log.Info("sources changed", "files", len(changed))
		_, err := extract(ctx, io.Discard, stderr, c, batchOpts, []string{dir})
		if err != nil {
			log.Error("re-extraction failed", "error", err)
		} else {
			log.Info("output updated", "out", opts.out)
		}
		if onBatch != nil {
			onBatch(changed, err)
		}
	})

	<-ctx.Done()
	log.Info("watch stopped")
	return nil
}
