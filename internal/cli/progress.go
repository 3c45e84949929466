package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressReporter shows a per-file progress bar during extraction and
// remembers which files were skipped.
type progressReporter struct {
	quiet bool
	w     io.Writer
	bar   *progressbar.ProgressBar
	start time.Time

	mu      sync.Mutex
	done    int
	skipped []string
}

func newProgressReporter(w io.Writer, quiet bool) *progressReporter {
	return &progressReporter{quiet: quiet, w: w}
}

func (p *progressReporter) begin(totalFiles int) {
	p.start = time.Now()
	if p.quiet {
		return
	}
	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

// onFile matches backend.Options.OnFile.
func (p *progressReporter) onFile(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if err != nil {
		p.skipped = append(p.skipped, path)
	}
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *progressReporter) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// summary prints the result line unless quiet.
func (p *progressReporter) summary(dest string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "✓ Extracted %d files in %.1fs", p.done-len(p.skipped), time.Since(p.start).Seconds())
	if dest != "" {
		fmt.Fprintf(p.w, " → %s", dest)
	}
	fmt.Fprintln(p.w)
	for _, path := range p.skipped {
		fmt.Fprintf(p.w, "  skipped: %s\n", path)
	}
}

func (p *progressReporter) skippedFiles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.skipped...)
}
