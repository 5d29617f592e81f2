package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/ValentinKolb/kvfacade/cmd/util"
	"github.com/ValentinKolb/kvfacade/lib/common"
	"github.com/google/uuid"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"io"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the configured backend",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

// perfPercentiles are reported for every benchmark
var perfPercentiles = []float64{0.5, 0.95, 0.99}

// benchmark describes one operation under test
type benchmark struct {
	name string
	// prepare is called once per key before the timer starts (optional)
	prepare func(key string) error
	// op is the measured operation, i counts the calls of one worker
	op func(key string, i int) error
}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. create,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the create-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	// every run works on its own keys
	perfKeyPrefix = fmt.Sprintf("__perf-%s", uuid.NewString()[:8])

	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Performance testing tool for the key-value façade")

	// Print configuration
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintln(out, kvConfig.String())
	fmt.Fprintf(out, "Threads: %d\n", perfNumThreads)
	fmt.Fprintf(out, "Key prefix: %s\n", perfKeyPrefix)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "starting tests...")

	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)

	collection := make([]map[string]any, perfKeySpread)
	for i := range collection {
		collection[i] = map[string]any{"id": i, "name": fmt.Sprintf("record-%d", i), "password": "secret"}
	}

	createString := func(key string) error {
		_, err := kvStorage.Create(key, "test").Await()
		return err
	}
	createCollection := func(key string) error {
		_, err := kvStorage.Create(key, collection).Await()
		return err
	}

	benchmarks := []benchmark{
		{
			name: "create",
			op: func(key string, _ int) error {
				return createString(key)
			},
		},
		{
			name: "create-large",
			op: func(key string, _ int) error {
				_, err := kvStorage.Create(key, largeValue).Await()
				return err
			},
		},
		{
			name:    "get",
			prepare: createString,
			op: func(key string, _ int) error {
				_, err := kvStorage.Get(key).Await()
				return err
			},
		},
		{
			name: "insert",
			op: func(key string, i int) error {
				_, err := kvStorage.Insert(key, map[string]any{"field": i % 10, "value": i}).Await()
				return err
			},
		},
		{
			name:    "find",
			prepare: createCollection,
			op: func(key string, i int) error {
				_, err := kvStorage.Find(key, map[string]any{"id": i % perfKeySpread}).Await()
				return err
			},
		},
		{
			name:    "update",
			prepare: createCollection,
			op: func(key string, i int) error {
				_, err := kvStorage.Update(key, map[string]any{}, map[string]any{"id": i % perfKeySpread, "name": "updated"}).Await()
				return err
			},
		},
		{
			name:    "mixed",
			prepare: createCollection,
			op: func(key string, i int) error {
				var err error
				switch i % 4 {
				case 0:
					_, err = kvStorage.Get(key).Await()
				case 1:
					_, err = kvStorage.Find(key, map[string]any{"id": i % perfKeySpread}).Await()
				case 2:
					_, err = kvStorage.Update(key, map[string]any{}, map[string]any{"id": i % perfKeySpread}).Await()
				case 3:
					_, err = kvStorage.Insert(key, map[string]any{"id": i % perfKeySpread}).Await()
				}
				return err
			},
		},
	}

	// Create results map and latency timers
	results := make(map[string]testing.BenchmarkResult)
	registry := gometrics.NewRegistry()

	for _, bench := range benchmarks {
		timer := gometrics.GetOrRegisterTimer(bench.name, registry)

		result := testing.Benchmark(func(b *testing.B) {
			if shouldSkip(bench.name) {
				return
			}
			runBenchmark(b, bench, timer)
		})

		results[bench.name] = result
		printResult(out, bench.name, result, timer)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Fprintf(out, "\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, registry, kvConfig); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Fprintln(out, "Export complete")
	}

	return nil
}

// runBenchmark prepares the keys of bench, measures its operation and removes the keys again
func runBenchmark(b *testing.B, bench benchmark, timer gometrics.Timer) {
	getKey, keys := getKeys(bench.name)

	// prepare keys
	if bench.prepare != nil {
		if err := forEachKey(keys, bench.prepare); err != nil {
			log.Printf("(%s) - error preparing keys: %v\n", bench.name, err)
		}
	}

	// cleanup
	b.Cleanup(func() {
		err := forEachKey(keys, func(k string) error {
			_, err := kvStorage.Erase(k).Await()
			return err
		})
		if err != nil {
			log.Printf("(%s) - error erasing keys: %v\n", bench.name, err)
		}
	})

	b.SetParallelism(perfNumThreads)

	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			start := time.Now()
			if err := bench.op(getKey(counter), counter); err != nil {
				log.Printf("(%s) - error performing operation: %v\n", bench.name, err)
			}
			timer.UpdateSince(start)
			counter++
		}
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	return slices.Contains(perfSkip, test)
}

// creates an array of test keys and a function to get a key by index (with wraparound)
func getKeys(prefix string) (func(int) string, []string) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	return getKey, keys
}

// forEachKey applies fn to all keys using perfNumThreads workers
func forEachKey(keys []string, fn func(string) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(perfNumThreads)

	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		key := key
		g.Go(func() error {
			return fn(key)
		})
	}

	return g.Wait()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(out io.Writer, test string, result testing.BenchmarkResult, timer gometrics.Timer) {
	if result.NsPerOp() == 0 {
		fmt.Fprintf(out, "%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	ps := timer.Percentiles(perfPercentiles)

	// Print the formatted result
	fmt.Fprintf(out, "%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, registry gometrics.Registry, config *common.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"P50Ns", "P95Ns", "P99Ns",
		"Backend", "Mode",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results in a stable order
	tests := make([]string, 0, len(results))
	for test := range results {
		tests = append(tests, test)
	}
	slices.Sort(tests)

	for _, test := range tests {
		result := results[test]

		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		ps := gometrics.GetOrRegisterTimer(test, registry).Percentiles(perfPercentiles)

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			config.Backend,
			config.Mode,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
