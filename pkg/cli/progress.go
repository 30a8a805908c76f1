package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter renders completion state for long batch operations,
// such as large synthetic simulation runs.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
}

const progressBarWidth = 30

// barProgress draws a carriage-return progress bar. It re-renders only
// when the displayed percentage changes, so per-case updates over a large
// batch stay cheap.
type barProgress struct {
	mu       sync.Mutex
	total    int64
	current  int64
	started  time.Time
	rendered int
	writer   io.Writer
}

// NewProgressReporter creates a progress reporter writing to w. A nil
// writer defaults to os.Stderr, keeping the bar out of piped report output.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &barProgress{writer: w, rendered: -1}
}

func (p *barProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.rendered = -1
	p.render(false)
}

func (p *barProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render(false)
}

// Finish completes the bar and moves past it to a fresh line.
func (p *barProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render(true)
	fmt.Fprintln(p.writer)
}

func (p *barProgress) render(force bool) {
	if p.total <= 0 {
		return
	}
	percent := int(p.current * 100 / p.total)
	if percent == p.rendered && !force {
		return
	}
	p.rendered = percent

	filled := progressBarWidth * percent / 100
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)
	rate := float64(p.current) / time.Since(p.started).Seconds()

	fmt.Fprintf(p.writer, "\r[%s] %3d%% %d/%d cases (%.0f/s)",
		bar, percent, p.current, p.total, rate)
}
