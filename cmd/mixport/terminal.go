package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"mixport/internal/export"
	"mixport/internal/logging"
	"mixport/internal/pipeline"
)

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// promptConfirmer asks on out and reads y/n answers from in. End of input
// declines the remaining collections.
type promptConfirmer struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(_ context.Context, collection string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "Export %s? [y/n] ", collection)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("read answer: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

var _ export.Confirmer = (*promptConfirmer)(nil)

// barProgress draws one progress bar per collection on w.
func barProgress(w io.Writer) export.ProgressFactory {
	return func(collection string, total int) pipeline.ProgressFunc {
		if total == 0 {
			return nil
		}
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(collection),
			progressbar.OptionSetItsString("track"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(w)
			}),
		)
		return func(done, _ int) {
			_ = bar.Set(done)
		}
	}
}

// sampledProgress logs progress in 25% steps when no terminal is attached.
func sampledProgress(logger *slog.Logger) export.ProgressFactory {
	sampler := logging.NewProgressSampler(25)
	return func(collection string, _ int) pipeline.ProgressFunc {
		return func(done, total int) {
			if !sampler.ShouldLog(collection, done, total) {
				return
			}
			logger.Info("export progress",
				logging.String(logging.FieldCollection, collection),
				logging.Int("done", done),
				logging.Int("total", total),
			)
		}
	}
}
