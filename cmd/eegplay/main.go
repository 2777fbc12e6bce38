// Command eegplay runs a recording through the attention analyzer as fast
// as possible and prints one row per tick.
//
// Usage:
//
//	eegplay [flags] recording.{bdf,edf}
//
// Examples:
//
//	eegplay sample_data/subject_01/focused_session.edf
//	eegplay -chunk 2 -window 8 -low 0.5 -high 40 session.bdf
//	eegplay -bad Fp1,Fp2 -db session.bdf
//	eegplay -notch 50 session.bdf
//	eegplay -json session.bdf
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-eeg/dsp/core"
	"github.com/cwbudde/algo-eeg/eeg"
	"github.com/cwbudde/algo-eeg/eeg/attention"
	"github.com/cwbudde/algo-eeg/eeg/band"
	"github.com/cwbudde/algo-eeg/eeg/prepare"
	"github.com/cwbudde/algo-eeg/eeg/recording"
	"github.com/cwbudde/algo-eeg/eeg/stream"
	timestats "github.com/cwbudde/algo-eeg/stats/time"
)

func main() {
	chunk := flag.Float64("chunk", 3, "chunk duration in seconds")
	window := flag.Float64("window", 10, "analysis window in seconds")
	low := flag.Float64("low", 1, "high-pass cutoff in Hz")
	high := flag.Float64("high", 50, "low-pass cutoff in Hz")
	notch := flag.Float64("notch", 0, "mains frequency to notch out in Hz (0 disables)")
	bad := flag.String("bad", "", "comma-separated channels to exclude")
	db := flag.Bool("db", false, "print band powers in dB")
	asJSON := flag.Bool("json", false, "print ticks as JSON lines instead of a table")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eegplay [flags] recording\n\n")
		fmt.Fprintf(os.Stderr, "Runs a BDF/EDF recording through the attention analyzer.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), stream.Config{ChunkSeconds: *chunk, WindowSeconds: *window, LowHz: *low, HighHz: *high}, *notch, *bad, *db, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, cfg stream.Config, notch float64, bad string, db, asJSON bool) error {
	rec, err := recording.Open(path)
	if err != nil {
		return err
	}
	if bad != "" {
		if err := rec.MarkBad(splitTrim(bad)...); err != nil {
			return err
		}
	}

	a, err := stream.New(rec, cfg, prepare.WithNotch(notch))
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(a)
	}

	sig := a.Signal()
	fmt.Printf("%s: %d channels at %g Hz, %.1f s (%d taps, referenced=%t)\n\n",
		path, len(sig.Channels), sig.SampleRate, a.TotalDuration(), sig.Taps, sig.Referenced)
	return printTable(a, db)
}

func printJSON(a *stream.Analyzer) error {
	enc := json.NewEncoder(os.Stdout)
	for {
		tick, err := a.Advance()
		if errors.Is(err, eeg.ErrEndOfStream) {
			return nil
		}
		if err != nil {
			return err
		}
		tick.Viz = stream.Segment{}
		if err := enc.Encode(tick); err != nil {
			return err
		}
	}
}

func printTable(a *stream.Analyzer, db bool) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{"Time [s]", "Dominant", "State"}
	for _, b := range band.All() {
		header = append(header, b.String())
	}
	header = append(header, band.AlphaBeta, band.ThetaBeta, "Peak [Hz]", "RMS")
	if _, err := fmt.Fprintln(tw, strings.Join(header, "\t")); err != nil {
		return err
	}

	labels := map[attention.Label]int{}
	amp := timestats.NewStreamingStats()
	ticks := 0
	for {
		tick, err := a.Advance()
		if errors.Is(err, eeg.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}
		ticks++
		labels[tick.Label]++
		for _, ch := range tick.Viz.Data {
			amp.Update(ch)
		}

		row := []string{
			fmt.Sprintf("%.1f", tick.Time),
			tick.Dominant.String(),
			tick.Label.String(),
		}
		for _, b := range band.All() {
			row = append(row, formatPower(tick.Powers.Get(b), db))
		}
		row = append(row,
			formatRatio(tick.Ratios, band.AlphaBeta),
			formatRatio(tick.Ratios, band.ThetaBeta),
			fmt.Sprintf("%.2f", tick.Spectral.PeakHz),
			fmt.Sprintf("%.2f", tick.Amplitude.RMS),
		)
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if ticks == 0 {
		fmt.Println("\nrecording is shorter than one analysis window")
		return nil
	}
	st := amp.Result()
	fmt.Printf("\n%d ticks, amplitude mean %.3f rms %.3f peak %.3f\n", ticks, st.Mean, st.RMS, st.Peak)
	for _, l := range []attention.Label{attention.Sleepy, attention.Relaxed, attention.Calm, attention.Focused, attention.HighlyEngaged} {
		if n := labels[l]; n > 0 {
			fmt.Printf("  %-15s %3d (%.0f%%)\n", l, n, 100*float64(n)/float64(ticks))
		}
	}
	return nil
}

func formatPower(p float64, db bool) string {
	if db {
		return fmt.Sprintf("%.1f dB", core.LinearPowerToDB(p))
	}
	return fmt.Sprintf("%.4g", p)
}

func formatRatio(r map[string]float64, name string) string {
	v, ok := r[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func splitTrim(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
