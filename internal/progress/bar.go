// Package progress renders the console progress bar shown while a
// batch of files is being processed.
package progress

import (
	"github.com/cheggaaa/pb/v3"
)

const barTemplate = `{{ bar . "[" "█" "█" "░" "]" }} {{ counters . }} ({{ percent . }}) - Elapsed: {{ etime . }} - ETA: {{ rtime . }}`

// Bar is a terminal progress bar over a known number of files.
type Bar struct {
	bar *pb.ProgressBar
}

// New creates and starts a bar for total files.
func New(total int) *Bar {
	bar := pb.New(total)
	bar.SetTemplateString(barTemplate)
	bar.SetMaxWidth(100)
	bar.Start()
	return &Bar{bar: bar}
}

// Increment advances the bar by one file.
func (b *Bar) Increment() {
	b.bar.Increment()
}

// Finish completes the bar and releases the console line.
func (b *Bar) Finish() {
	b.bar.Finish()
}
