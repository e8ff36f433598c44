//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package circuit

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/beavy/p2p"
	"github.com/markkurossi/tabulate"
)

// Timing accumulates run time samples over repeated runs and renders
// a profiling report. The phases of a run may overlap so the samples
// are absolute durations.
type Timing struct {
	Runs    int
	Total   time.Duration
	Samples []*Sample
}

// Sample contains the accumulated duration of one phase.
type Sample struct {
	Label    string
	Duration time.Duration
	Samples  []*Sample
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return new(Timing)
}

// Add adds the duration to the sample with label, creating the
// sample if needed, and returns the sample.
func (t *Timing) Add(label string, d time.Duration) *Sample {
	return add(&t.Samples, label, d)
}

// AddRun adds the total duration of one run.
func (t *Timing) AddRun(total time.Duration) {
	t.Runs++
	t.Total += total
}

// Add adds the duration to the sub-sample with label and returns
// the sub-sample.
func (s *Sample) Add(label string, d time.Duration) *Sample {
	return add(&s.Samples, label, d)
}

func add(samples *[]*Sample, label string, d time.Duration) *Sample {
	for _, s := range *samples {
		if s.Label == label {
			s.Duration += d
			return s
		}
	}
	s := &Sample{
		Label:    label,
		Duration: d,
	}
	*samples = append(*samples, s)
	return s
}

func (t *Timing) mean(d time.Duration) time.Duration {
	if t.Runs == 0 {
		return d
	}
	return d / time.Duration(t.Runs)
}

// Print prints the profiling report with mean durations per run to w.
func (t *Timing) Print(w io.Writer, stats p2p.IOStats) {
	if len(t.Samples) == 0 {
		return
	}

	sent := stats.Sent
	received := stats.Recvd
	flushed := stats.Flushed

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	pct := func(d, of time.Duration) string {
		if of == 0 {
			return ""
		}
		return fmt.Sprintf("%.2f%%", float64(d)/float64(of)*100)
	}

	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.Label)
		row.Column(t.mean(sample.Duration).String())
		row.Column(pct(sample.Duration, t.Total))
		row.Column("")

		for idx, sub := range sample.Samples {
			row := tab.Row()

			var prefix string
			if idx+1 >= len(sample.Samples) {
				prefix = "╰╴"
			} else {
				prefix = "├╴"
			}
			row.Column(prefix + sub.Label).SetFormat(tabulate.FmtItalic)
			row.Column(t.mean(sub.Duration).String()).
				SetFormat(tabulate.FmtItalic)
			row.Column(pct(sub.Duration, sample.Duration)).
				SetFormat(tabulate.FmtItalic)
			row.Column("")
		}
	}
	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(t.mean(t.Total).String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtBold)

	xfer := float64(sent + received)
	if xfer == 0 {
		xfer = 1
	}

	row = tab.Row()
	row.Column("├╴Sent").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(fmt.Sprintf("%.2f%%", float64(sent)/xfer*100)).
		SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(sent).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("├╴Rcvd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column(fmt.Sprintf("%.2f%%", float64(received)/xfer*100)).
		SetFormat(tabulate.FmtItalic)
	row.Column(FileSize(received).String()).SetFormat(tabulate.FmtItalic)

	row = tab.Row()
	row.Column("╰╴Flcd").SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(fmt.Sprintf("%v", flushed)).SetFormat(tabulate.FmtItalic)

	tab.Print(w)
}
