package cmd

import (
	"fmt"
	"io"

	"github.com/khanhnv2901/fdscan/internal/domain/verdict"
	"github.com/schollz/progressbar/v3"
)

// progressTracker drives a progress bar from Runner callbacks. Increment is
// called from the Runner's collector goroutine only.
type progressTracker struct {
	bar        *progressbar.ProgressBar
	out        io.Writer
	name       string
	total      int
	completed  int
	vulnerable int
	review     int
	duration   float64
}

func newProgressTracker(out io.Writer, total int, name string) *progressTracker {
	if total <= 0 {
		total = 1
	}
	p := &progressTracker{out: out, name: name, total: total}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(p.describe()),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return p
}

func (p *progressTracker) Increment(v verdict.Verdict, duration float64) {
	p.completed++
	if v.IsVulnerable() {
		p.vulnerable++
	}
	if v.NeedsReview() {
		p.review++
	}
	p.duration += duration

	p.bar.Describe(p.describe())
	_ = p.bar.Add(1)
}

func (p *progressTracker) Stop() {
	if p.completed >= p.total {
		_ = p.bar.Finish()
	}
	fmt.Fprintln(p.out)
}

func (p *progressTracker) describe() string {
	avg := 0.0
	if p.completed > 0 {
		avg = p.duration / float64(p.completed)
	}
	return fmt.Sprintf("[%s] vuln:%d review:%d avg:%.2fs", p.name, p.vulnerable, p.review, avg)
}
