// Command reverbinfo prints the line tuning and the measured decay of the
// Schroeder reverberator.
//
// Usage:
//
//	reverbinfo [flags]
//
// The reverberator is driven with a unit impulse at full wet mix and the
// response is analysed with a Schroeder backward integral.
//
// Examples:
//
//	reverbinfo
//	reverbinfo -rate 44100 -rt60 2500
//	reverbinfo -rate 48000 -rt60 1200 -damp 0.5 -plot
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/cwbudde/algo-reverb/dsp/effects/reverb"
	"github.com/cwbudde/algo-reverb/measure/decay"
)

const (
	defaultPlotWidth = 80
	plotFloorDB      = -60.0
	plotLabelWidth   = 22
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	rt60 := flag.Float64("rt60", 1000, "reverberation time in milliseconds")
	damp := flag.Float64("damp", 0, "comb dampening in [0, 1)")
	seconds := flag.Float64("seconds", 0, "impulse response length in seconds (default 2x rt60)")
	plot := flag.Bool("plot", false, "plot the energy decay curve")
	rows := flag.Int("rows", 24, "number of rows in the decay plot")
	width := flag.Int("width", 0, "plot width in columns (default terminal width)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reverbinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints Schroeder reverb line tuning and measured decay times.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  reverbinfo -rate 44100 -rt60 2500\n")
		fmt.Fprintf(os.Stderr, "  reverbinfo -damp 0.5 -plot\n")
	}
	flag.Parse()

	r, err := reverb.NewSchroeder(*rate,
		reverb.WithRT60Ms(*rt60),
		reverb.WithDampening(*damp),
		reverb.WithDryWetMix(1),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	length := *seconds
	if length <= 0 {
		length = 2 * *rt60 / 1000
	}

	a := decay.NewAnalyzer(*rate)

	ir, err := a.Capture(r, length)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := printLines(os.Stdout, r); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write line table: %v\n", err)
		os.Exit(1)
	}

	m, err := a.Analyze(ir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	if err := printMetrics(os.Stdout, *rt60, m); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write metrics: %v\n", err)
		os.Exit(1)
	}

	if !*plot {
		return
	}

	curve, err := a.SchroederIntegral(ir[m.PeakIndex:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	if err := plotCurve(os.Stdout, curve, *rate, plotWidth(*width), *rows); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write plot: %v\n", err)
		os.Exit(1)
	}
}

func printLines(w io.Writer, r *reverb.Schroeder) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Line\tDelay [samples]\tDelay [ms]\tGain\n")
	fmt.Fprintf(tw, "----\t---------------\t----------\t----\n")

	ms := func(samples float64) float64 { return 1000 * samples / r.SampleRate() }

	for i := range reverb.CombCount {
		d := r.CombDelay(i)
		fmt.Fprintf(tw, "comb %d\t%.2f\t%.3f\t%.6f\n", i, d, ms(d), r.CombGain(i))
	}
	for i := range reverb.AllPassCount {
		d := r.AllPassDelay(i)
		fmt.Fprintf(tw, "allpass %d\t%.2f\t%.3f\t%.6f\n", i, d, ms(d), r.AllPassGain(i))
	}

	return tw.Flush()
}

func printMetrics(w io.Writer, targetMs float64, m decay.Metrics) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Metric\tValue [s]\n")
	fmt.Fprintf(tw, "------\t---------\n")
	fmt.Fprintf(tw, "RT60 target\t%.4f\n", targetMs/1000)
	fmt.Fprintf(tw, "RT60 measured\t%.4f\n", m.RT60)
	fmt.Fprintf(tw, "EDT\t%.4f\n", m.EDT)
	fmt.Fprintf(tw, "T20\t%.4f\n", m.T20)
	fmt.Fprintf(tw, "T30\t%.4f\n", m.T30)

	return tw.Flush()
}

// plotCurve draws rows evenly spaced samples of a dB decay curve as
// horizontal bars, full width at 0 dB and empty at plotFloorDB.
func plotCurve(w io.Writer, curve []float64, sampleRate float64, width, rows int) error {
	if len(curve) == 0 || rows <= 0 {
		return nil
	}

	barWidth := max(width-plotLabelWidth, 1)
	step := max(len(curve)/rows, 1)

	for i := 0; i < len(curve); i += step {
		db := max(curve[i], plotFloorDB)
		n := int(math.Round(float64(barWidth) * (1 - db/plotFloorDB)))

		_, err := fmt.Fprintf(w, "%8.3f s %7.1f dB |%s\n", float64(i)/sampleRate, db, strings.Repeat("#", n))
		if err != nil {
			return err
		}
	}

	return nil
}

// plotWidth returns override when positive, else the width of the terminal
// on stdout, else defaultPlotWidth.
func plotWidth(override int) int {
	if override > 0 {
		return override
	}

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultPlotWidth
	}

	cols, _, err := term.GetSize(fd)
	if err != nil || cols <= 0 {
		return defaultPlotWidth
	}

	return cols
}
