// Package progress renders terminal progress for long-running analyses.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar wraps a progress bar for file processing.
type Bar struct {
	bar   *progressbar.ProgressBar
	label string
}

// NewSpinner creates a spinner for work with an unknown total.
func NewSpinner(label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, label: label}
}

// NewBar creates a progress bar with the given label and total count.
func NewBar(label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, label: label}
}

// Tick advances the bar by one. Safe for concurrent use.
func (b *Bar) Tick() {
	b.bar.Add(1)
}

// Finish clears the bar without output.
func (b *Bar) Finish() {
	b.bar.Finish()
	b.bar.Clear()
}

// FinishError clears the bar and reports the error to stderr.
func (b *Bar) FinishError(err error) {
	b.bar.Finish()
	b.bar.Clear()
	fmt.Fprintf(os.Stderr, "  %s error: %v\n", b.label, err)
}
