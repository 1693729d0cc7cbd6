// Package main times the casetrack CLI against the upstream case table.
// Each suite runs once with the source cache disabled and once with the
// SQLite cache, treating the first cached run as cold and averaging the rest as warm.
// Results are written to a timestamped CSV file for documentation.
//
// Prerequisites:
// - casetrack binary installed and available in PATH
// - network access to the configured --source (or a local copy passed as the argument)
//
// Usage: go run benchmark/main.go [source]
//
//	source: optional URL or path of the per-state case CSV
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one suite (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Location    string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkSuite is one command measured for every location.
type BenchmarkSuite struct {
	Name string
	Args []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Source      string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Locations   []string
	Suites      []BenchmarkSuite
}

func main() {
	config := BenchmarkConfig{
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Locations:   []string{"NSW", "VIC", "QLD", "WA"},
		Suites: []BenchmarkSuite{
			{Name: "project", Args: []string{"project"}},
			{Name: "project-worse", Args: []string{"project", "--rate", "worse", "--horizon", "60"}},
			{Name: "reff-series", Args: []string{"reff", "--reff-mode", "series"}},
		},
	}
	if len(os.Args) == 2 {
		config.Source = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [source]\n", os.Args[0])
		os.Exit(1)
	}

	if _, err := exec.LookPath("casetrack"); err != nil {
		fmt.Printf("Prerequisites check failed: casetrack binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("casetrack", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// runBenchmarks executes every suite for every location.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d locations, %d suites, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Locations), len(config.Suites), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, location := range config.Locations {
		fmt.Printf("Benchmarking %s\n", location)
		for _, suite := range config.Suites {
			results = append(results, runBenchmarkSuite(config, location, suite))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache phases for one suite.
func runBenchmarkSuite(config BenchmarkConfig, location string, suite BenchmarkSuite) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", suite.Name, location)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, location, suite.Args, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Location:    location,
		Command:     suite.Name,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a casetrack command numRuns times and returns the cold time and the warm times.
func runBenchmark(config BenchmarkConfig, location string, suiteArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, suiteArgs...)
	args = append(args, "--location", location, "--cache-backend", cacheBackend, "--output", "csv")
	if config.Source != "" {
		args = append(args, "--source", config.Source)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		elapsed, err := timeCommand(config.Timeout, args)
		if err != nil {
			fmt.Printf("    run %d failed: %v\n", run, err)
			continue
		}
		times = append(times, elapsed.Seconds())
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// timeCommand runs casetrack once and reports its wall time when the output looks complete.
func timeCommand(timeout time.Duration, args []string) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	output, err := exec.CommandContext(ctx, "casetrack", args...).Output()
	elapsed := time.Since(start)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 0, ctx.Err()
	}
	if err != nil {
		return 0, err
	}
	if !isSuccess(output) {
		return 0, errors.New("output has no CSV header")
	}
	return elapsed, nil
}

// isSuccess checks that the CSV output starts with the date column.
func isSuccess(output []byte) bool {
	return strings.HasPrefix(string(output), "date,")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/casetrack_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"location", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Location, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the results grouped by suite.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, suite := range config.Suites {
		fmt.Printf("%s:\n", suite.Name)
		for _, result := range results {
			if result.Command == suite.Name {
				fmt.Printf("  %-4s: No-cache: %s, Cold: %s, Warm: %s\n", result.Location, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
