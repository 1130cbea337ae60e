package browse

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shelfview/shelfview/cmd/util"
	"github.com/shelfview/shelfview/lib/view"
)

var (
	perfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Benchmark fetch and view pipeline latency against the backend",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfIterations = 100
)

func init() {
	// add flags
	key := "iterations"
	perfCmd.Flags().Int(key, 100, util.WrapString("How many times to run each benchmark"))
	key = "csv"
	perfCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfIterations = viper.GetInt("iterations")
	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Benchmarking against", util.GetStoreConfig().Endpoint)
	fmt.Printf("Iterations: %d\n\n", perfIterations)

	sess, err := util.GetSessionContext()
	if err != nil {
		return err
	}
	store, err := util.GetStore(sess)
	if err != nil {
		return err
	}

	timers := map[string]gometrics.Timer{}

	// cold fetch: invalidate first so every iteration hits the remote
	timers["fetch-cold"] = benchmark(func() {
		store.Invalidate("books")
	}, func() {
		_, _ = store.Fetch("books", nil)
	})

	// warm fetch: the snapshot is served from the cache
	timers["fetch-warm"] = benchmark(nil, func() {
		_, _ = store.Fetch("books", nil)
	})

	// pipeline: join, filter and sort over the loaded snapshots
	controller.SetFilter("book_type", "scifi")
	controller.SetSort("year", view.Descending)
	timers["pipeline"] = benchmark(nil, func() {
		controller.Rows()
	})

	timers["circulation"] = benchmark(nil, func() {
		_, _ = controller.Circulation()
	})

	for _, name := range []string{"fetch-cold", "fetch-warm", "pipeline", "circulation"} {
		printTimer(name, timers[name])
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeTimersToCSV(csvPath, timers); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchmark times fn perfIterations times. prepare runs untimed before each
// iteration.
func benchmark(prepare func(), fn func()) gometrics.Timer {
	timer := gometrics.NewTimer()
	for i := 0; i < perfIterations; i++ {
		if prepare != nil {
			prepare()
		}
		timer.Time(fn)
	}
	return timer
}

// printTimer prints the result of a benchmark in a formatted way
func printTimer(name string, timer gometrics.Timer) {
	percentiles := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("%-15smean=%v\tp50=%v\tp95=%v\tp99=%v\n",
		name,
		time.Duration(int64(timer.Mean())),
		time.Duration(int64(percentiles[0])),
		time.Duration(int64(percentiles[1])),
		time.Duration(int64(percentiles[2])),
	)
}

// writeTimersToCSV writes benchmark results to a CSV file
func writeTimersToCSV(csvPath string, timers map[string]gometrics.Timer) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Benchmark", "Iterations", "MeanNs", "P50Ns", "P95Ns", "P99Ns",
		"Endpoint", "TimeoutSec", "RetryCount",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	config := util.GetStoreConfig()
	for name, timer := range timers {
		percentiles := timer.Percentiles([]float64{0.5, 0.95, 0.99})
		row := []string{
			name,
			strconv.Itoa(perfIterations),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", percentiles[0]),
			fmt.Sprintf("%.0f", percentiles[1]),
			fmt.Sprintf("%.0f", percentiles[2]),
			config.Endpoint,
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for benchmark %s: %v", name, err)
		}
	}

	return nil
}
