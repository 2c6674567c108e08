package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var csvHeader = []string{
	"run_id", "timestamp", "go_version", "os", "arch",
	"scene", "grid_size", "robots", "solver",
	"success", "reason", "moves", "distance", "cycles", "duration_ms",
}

// WriteCSV writes one row per result under a header row.
func WriteCSV(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.RunID, r.Timestamp, r.GoVersion, r.OS, r.Arch,
			r.Scene, r.GridSize, strconv.Itoa(r.Robots), r.Solver,
			strconv.FormatBool(r.Success), r.Reason,
			strconv.Itoa(r.Moves), strconv.Itoa(r.Distance), strconv.Itoa(r.Cycles),
			fmt.Sprintf("%.3f", r.DurationMs),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// Save writes results to path as "csv" or "json", creating parent
// directories.
func Save(path, format string, results []Result) error {
	write := WriteCSV
	switch format {
	case "csv":
	case "json":
		write = WriteJSON
	default:
		return fmt.Errorf("bench: unknown format %q", format)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	if err := write(f, results); err != nil {
		f.Close()
		return fmt.Errorf("bench: write %s: %w", path, err)
	}
	return f.Close()
}

// Summary aggregates a batch. Means are over successful runs.
type Summary struct {
	Runs           int
	Successes      int
	MeanMoves      float64
	MeanCycles     float64
	MeanDurationMs float64
	Failures       map[string]int
}

// SuccessRate returns successes over runs, 0 for an empty batch.
func (s Summary) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Runs)
}

// Summarize aggregates results.
func Summarize(results []Result) Summary {
	s := Summary{Failures: make(map[string]int)}
	var moves, cycles int
	var duration float64
	for _, r := range results {
		s.Runs++
		if !r.Success {
			s.Failures[r.Reason]++
			continue
		}
		s.Successes++
		moves += r.Moves
		cycles += r.Cycles
		duration += r.DurationMs
	}
	if s.Successes > 0 {
		n := float64(s.Successes)
		s.MeanMoves = float64(moves) / n
		s.MeanCycles = float64(cycles) / n
		s.MeanDurationMs = duration / n
	}
	return s
}

// Print writes the summary table.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== BENCHMARK SUMMARY ===")
	fmt.Fprintf(w, "%8s %8s %8s %10s %10s %12s\n", "Runs", "Success", "Rate", "AvgMoves", "AvgCycles", "AvgTime(ms)")
	fmt.Fprintln(w, strings.Repeat("-", 61))
	fmt.Fprintf(w, "%8d %8d %7.1f%% %10.2f %10.2f %12.3f\n",
		s.Runs, s.Successes, s.SuccessRate()*100, s.MeanMoves, s.MeanCycles, s.MeanDurationMs)

	if len(s.Failures) == 0 {
		return
	}
	reasons := make([]string, 0, len(s.Failures))
	for reason := range s.Failures {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	fmt.Fprintln(w, "\nFailures:")
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %-28s %d\n", reason, s.Failures[reason])
	}
}

// WriteMetrics dumps every gathered metric family in the Prometheus text
// exposition format.
func WriteMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("bench: gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("bench: encode metrics: %w", err)
		}
	}
	return nil
}
