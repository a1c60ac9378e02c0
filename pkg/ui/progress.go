package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ProgressConfig holds progress display settings
type ProgressConfig struct {
	Total   int
	Width   int
	ShowETA bool
}

// Progress is a live-updating run progress display. It renders a
// single line to stderr and redraws it on a ticker. All counters are
// safe for concurrent use by worker goroutines.
type Progress struct {
	config    ProgressConfig
	startTime time.Time
	current   int64

	// Verdict counters
	passed     int64
	mismatched int64
	errored    int64
	skipped    int64

	// Control
	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewProgress creates a new progress display
func NewProgress(config ProgressConfig) *Progress {
	if config.Width == 0 {
		config.Width = 30
	}
	return &Progress{
		config: config,
		done:   make(chan struct{}),
	}
}

// Start begins the live rendering loop. On non-interactive output the
// display stays silent and only the counters are maintained.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.startTime = time.Now()

	if IsTTY() && !IsSilent() {
		go p.renderLoop()
	}
}

// Stop halts rendering and clears the progress line.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.done)

	if IsTTY() && !IsSilent() {
		fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 100))
	}
}

// Record counts one completed case by its verdict group.
func (p *Progress) Record(verdict string) {
	atomic.AddInt64(&p.current, 1)
	switch verdict {
	case "pass":
		atomic.AddInt64(&p.passed, 1)
	case "skipped":
		atomic.AddInt64(&p.skipped, 1)
	case "error", "timeout":
		atomic.AddInt64(&p.errored, 1)
	default:
		atomic.AddInt64(&p.mismatched, 1)
	}
}

// Stats returns the current counter values.
func (p *Progress) Stats() (passed, mismatched, errored, skipped int64) {
	return atomic.LoadInt64(&p.passed),
		atomic.LoadInt64(&p.mismatched),
		atomic.LoadInt64(&p.errored),
		atomic.LoadInt64(&p.skipped)
}

func (p *Progress) renderLoop() {
	spinner := DefaultSpinner()
	ticker := time.NewTicker(spinner.Interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.render(spinner.Frames[frame%len(spinner.Frames)])
			frame++
		}
	}
}

func (p *Progress) render(spinner string) {
	current := atomic.LoadInt64(&p.current)
	total := int64(p.config.Total)
	elapsed := time.Since(p.startTime)

	var percent float64
	if total > 0 {
		percent = float64(current) / float64(total)
	}

	bar := p.buildBar(percent)
	line := fmt.Sprintf("\r %s %s %d/%d", spinner, bar, current, total)

	passed, mismatched, errored, _ := p.Stats()
	line += fmt.Sprintf(" | %s %d %s %d %s %d",
		PassStyle.Render("ok"), passed,
		MismatchStyle.Render("drift"), mismatched,
		ErrorStyle.Render("err"), errored)

	if p.config.ShowETA && current > 0 && total > current {
		rate := float64(current) / elapsed.Seconds()
		eta := time.Duration(float64(total-current)/rate) * time.Second
		line += fmt.Sprintf(" | eta %s", eta.Round(time.Second))
	}

	fmt.Fprint(os.Stderr, line)
}

func (p *Progress) buildBar(percent float64) string {
	filled := int(percent * float64(p.config.Width))
	if filled > p.config.Width {
		filled = p.config.Width
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", p.config.Width-filled) + "]"
}

// PrintFinalProgress prints the end-of-run statistics line.
func PrintFinalProgress(total int, elapsed time.Duration, passed, mismatched, errored, skipped int) {
	if IsSilent() {
		return
	}
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(total) / elapsed.Seconds()
	}
	fmt.Fprintf(os.Stderr, "\n %s %d cases in %s (%.1f case/s) | %s %d %s %d %s %d %s %d\n",
		StatValueStyle.Render("done:"), total, elapsed.Round(time.Millisecond), rate,
		PassStyle.Render("pass"), passed,
		MismatchStyle.Render("mismatch"), mismatched,
		ErrorStyle.Render("error"), errored,
		SkippedStyle.Render("skip"), skipped)
}
