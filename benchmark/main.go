// Package main provides a performance benchmarking tool for the dtreport CLI.
// It generates synthetic Dependency-Track project lists of increasing size,
// runs the report against each of them several times, treating the first
// successful run as cold and averaging the rest as warm, and writes the
// timings to a CSV file for documentation.
//
// Prerequisites:
// - dtreport binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated inputs and the SQLite cache
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run.
type BenchmarkResult struct {
	Dataset  string
	Scenario string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Datasets map[string]int // name -> number of project snapshots
	Order    []string
}

// scenario is one way of producing the report from a dataset.
type scenario struct {
	name string
	args func(input, baseURL, dbPath, out string) []string
}

var scenarios = []scenario{
	{"dtrack", func(_, baseURL, _, out string) []string {
		return []string{"report", "--base-url", baseURL, "-o", out}
	}},
	{"file", func(input, _, _, out string) []string {
		return []string{"report", "--source", "file", "--input-file", input, "-o", out}
	}},
	{"file-fill-gaps", func(input, _, _, out string) []string {
		return []string{"report", "--source", "file", "--input-file", input, "--fill-gaps", "-o", out}
	}},
	{"cache", func(_, _, dbPath, out string) []string {
		return []string{"report", "--source", "cache", "--cache-backend", "sqlite", "--cache-db-connect", dbPath, "-o", out}
	}},
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 5 * time.Minute,
		Runs:    4,
		Datasets: map[string]int{
			"small":  1_000,
			"medium": 10_000,
			"large":  100_000,
		},
		Order: []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the dtreport binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("dtreport"); err != nil {
		return fmt.Errorf("dtreport binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates every dataset, seeds its cache and times all scenarios
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d runs per scenario\n",
		len(config.Order), config.Timeout, config.Runs)

	for _, name := range config.Order {
		input := filepath.Join(config.WorkDir, name+".json")
		dbPath := filepath.Join(config.WorkDir, name+".db")
		if err := generateDataset(input, config.Datasets[name]); err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		srv, err := serveDataset(input)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		if err := seedCache(srv.URL, dbPath, filepath.Join(config.WorkDir, name+"_seed.csv")); err != nil {
			fmt.Printf("Warning: failed to seed cache for %s: %v\n", name, err)
		}

		fmt.Printf("Benchmarking %s (%d snapshots)\n", name, config.Datasets[name])
		for _, sc := range scenarios {
			out := filepath.Join(config.WorkDir, fmt.Sprintf("%s_%s.csv", name, sc.name))
			cold, warm := runBenchmark(config, sc.args(input, srv.URL, dbPath, out))
			fmt.Printf("  %-16s cold: %s, warm average: %s\n", sc.name, cold, warm)
			results = append(results, BenchmarkResult{Dataset: name, Scenario: sc.name, ColdTime: cold, WarmTime: warm})
		}
		srv.Close()
	}

	return results
}

// generateDataset writes n projects spread over twelve months and twenty project names.
func generateDataset(path string, n int) error {
	type metrics struct {
		InheritedRiskScore int `json:"inheritedRiskScore"`
		Critical           int `json:"critical"`
		High               int `json:"high"`
		Medium             int `json:"medium"`
		Low                int `json:"low"`
		Unassigned         int `json:"unassigned"`
	}
	type project struct {
		UUID          string  `json:"uuid"`
		Name          string  `json:"name"`
		Version       string  `json:"version"`
		LastBomImport int64   `json:"lastBomImport"`
		Metrics       metrics `json:"metrics"`
	}

	rng := rand.New(rand.NewPCG(uint64(n), 1))
	start := time.Now().AddDate(-1, 0, 0)
	projects := make([]project, n)
	for i := range projects {
		projects[i] = project{
			UUID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			Name:          fmt.Sprintf("service-%02d", rng.IntN(20)),
			Version:       fmt.Sprintf("%d.%d.%d", rng.IntN(5), rng.IntN(20), i),
			LastBomImport: start.Add(time.Duration(rng.IntN(360*24)) * time.Hour).UnixMilli(),
			Metrics: metrics{
				InheritedRiskScore: rng.IntN(1000),
				Critical:           rng.IntN(10),
				High:               rng.IntN(50),
				Medium:             rng.IntN(100),
				Low:                rng.IntN(200),
				Unassigned:         rng.IntN(5),
			},
		}
	}

	data, err := json.Marshal(projects)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// serveDataset answers the Dependency-Track project endpoint with the dataset
// as the first page and an empty page afterwards.
func serveDataset(input string) (*httptest.Server, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, err
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write(data)
			return
		}
		_, _ = w.Write([]byte("[]"))
	})), nil
}

// seedCache fills a fresh SQLite cache through one write-through report run.
func seedCache(baseURL, dbPath, out string) error {
	_ = os.Remove(dbPath)
	cmd := exec.Command("dtreport", "report", "--base-url", baseURL, "--cache-backend", "sqlite", "--cache-db-connect", dbPath, "-o", out)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%v\nOutput: %s", err, output)
	}
	return nil
}

// runBenchmark executes dtreport config.Runs times and returns the cold time and the warm average
func runBenchmark(config BenchmarkConfig, args []string) (coldTime, warmAvg string) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("dtreport", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) == 0 {
		return "TIMEOUT", "TIMEOUT"
	}
	coldTime = fmt.Sprintf("%.3fs", times[0])
	if len(times) == 1 {
		return coldTime, "N/A"
	}
	var sum float64
	for _, t := range times[1:] {
		sum += t
	}
	return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
}

// isSuccess checks if command output indicates a written report
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Wrote CSV report") && !strings.Contains(outputStr, "Fatal")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/dtreport_benchmark_%s.csv", timestamp)

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

	// Write header
	if err := writer.Write([]string{"dataset", "scenario", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Scenario, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, sc := range scenarios {
		fmt.Printf("%s:\n", sc.name)
		for _, name := range config.Order {
			for _, result := range results {
				if result.Dataset == name && result.Scenario == sc.name {
					fmt.Printf("  %-8s: Cold: %s, Warm: %s\n", result.Dataset, result.ColdTime, result.WarmTime)
				}
			}
		}
	}
}
