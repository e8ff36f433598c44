//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package backend

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/markkurossi/beavy/circuit"
	"github.com/markkurossi/beavy/comm"
	"github.com/markkurossi/tabulate"
)

// Report holds the statistics of the evaluated circuits. Durations
// are mean values per run.
type Report struct {
	Session       string         `json:"session"`
	Party         int            `json:"party"`
	Runs          int            `json:"runs"`
	Evaluation    string         `json:"evaluation"`
	Threads       int            `json:"threads"`
	Gates         string         `json:"gates"`
	Timings       []ReportTiming `json:"timings"`
	Total         Duration       `json:"total"`
	Communication ReportComm     `json:"communication"`
}

// ReportTiming holds the mean duration of one phase.
type ReportTiming struct {
	Label    string   `json:"label"`
	Duration Duration `json:"duration"`
}

// ReportComm holds the communication statistics.
type ReportComm struct {
	Sent     uint64            `json:"sent"`
	Received uint64            `json:"received"`
	Flushed  uint64            `json:"flushed"`
	Messages map[string]uint64 `json:"messages"`
}

// Duration marshals a time.Duration as milliseconds.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	ms := float64(d) / float64(time.Millisecond)
	return []byte(fmt.Sprintf("%.3f", ms)), nil
}

func (b *TwoParty) mean(d time.Duration) Duration {
	if b.timing.Runs == 0 {
		return Duration(d)
	}
	return Duration(d / time.Duration(b.timing.Runs))
}

// Report returns the statistics of the evaluated circuits.
func (b *TwoParty) Report() *Report {
	stats := b.IOStats()
	sent, _ := b.layer.MessageCounts()

	r := &Report{
		Session:    b.session.String(),
		Party:      b.cfg.MyID,
		Runs:       b.timing.Runs,
		Evaluation: b.cfg.Evaluation.String(),
		Threads:    b.cfg.Threads,
		Gates:      b.gates.String(),
		Total:      b.mean(b.timing.Total),
		Communication: ReportComm{
			Sent:     stats.Sent,
			Received: stats.Recvd,
			Flushed:  stats.Flushed,
			Messages: make(map[string]uint64),
		},
	}
	for _, s := range b.timing.Samples {
		r.Timings = append(r.Timings, ReportTiming{
			Label:    s.Label,
			Duration: b.mean(s.Duration),
		})
	}
	for t, count := range sent {
		if count > 0 {
			r.Communication.Messages[t.String()] = count
		}
	}
	return r
}

// PrintJSON prints the statistics report as JSON to w.
func (b *TwoParty) PrintJSON(w io.Writer) error {
	data, err := json.MarshalIndent(b.Report(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "backend: report")
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// PrintStats prints the run time and communication tables to w.
func (b *TwoParty) PrintStats(w io.Writer) {
	fmt.Fprintf(w, "Session %v, party %d, %d runs, %s\n",
		b.session, b.cfg.MyID, b.timing.Runs, b.gates)
	b.timing.Print(w, b.IOStats())

	sent, rcvd := b.layer.MessageCounts()

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Message").SetAlign(tabulate.ML)
	tab.Header("Sent").SetAlign(tabulate.MR)
	tab.Header("Rcvd").SetAlign(tabulate.MR)

	for t := comm.MessageType(0); ; t++ {
		s, ok := sent[t]
		if !ok {
			break
		}
		if s == 0 && rcvd[t] == 0 {
			continue
		}
		row := tab.Row()
		row.Column(t.String())
		row.Column(fmt.Sprintf("%d", s))
		row.Column(fmt.Sprintf("%d", rcvd[t]))
	}
	tab.Print(w)
}

// Gates returns the accumulated gate statistics.
func (b *TwoParty) Gates() circuit.Stats {
	return b.gates
}
