// Package main provides the benchmark runner for the RGM solver.
// Solves every scene in a directory and collects metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/elektrokombinacija/rgm/internal/algo"
	"github.com/elektrokombinacija/rgm/internal/bench"
)

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory with scene JSON files")
	outputFile := flag.String("output", "results.csv", "Output file")
	format := flag.String("format", "csv", "Output format (csv, json)")
	workers := flag.Int("workers", 4, "Concurrent solves")
	maxPasses := flag.Int("max-passes", 1, "Solver passes before giving up")
	verify := flag.Bool("verify", true, "Replay every solution")
	metricsFile := flag.String("metrics", "", "Write Prometheus metrics to file")
	verbose := flag.Bool("verbose", false, "Log every run")

	flag.Parse()

	jobs, err := bench.LoadJobs(*inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Commit: %s\n", getGitCommit())
	fmt.Printf("Found %d scenes in %s\n", len(jobs), *inputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	runner := bench.NewRunner(*workers, algo.Options{MaxPasses: *maxPasses}, reg)
	runner.Verify = *verify
	if *verbose {
		runner.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	results, err := runner.Run(ctx, jobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running benchmarks: %v\n", err)
		os.Exit(1)
	}

	if err := bench.Save(*outputFile, *format, results); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	if *metricsFile != "" {
		f, err := os.Create(*metricsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating metrics file: %v\n", err)
			os.Exit(1)
		}
		if err := bench.WriteMetrics(f, reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing metrics: %v\n", err)
		}
		f.Close()
	}

	bench.Summarize(results).Print(os.Stdout)
}
