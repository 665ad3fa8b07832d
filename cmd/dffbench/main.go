// dffbench drives the benchmark task binaries. For every
// (task, element count, impl) triple it spawns the task process
// repeatedly until at least -min-runs iterations and -min-seconds
// wall-seconds have elapsed, kills runs exceeding the timeout, and
// reports the mean of the printed floats.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const RUN_TIMEOUT = 900 * time.Second

func main() {
	dir := flag.String("dir", ".", "directory holding the BM_* task binaries")
	tasks := flag.String("tasks", "insertion_throughput", "comma-separated task names (without the BM_ prefix)")
	impls := flag.String("impls", "DFF,DFF_FG", "comma-separated impl names passed to each task binary")
	log2 := flag.Uint("log2", 16, "initial capacity log2, forwarded to the tasks")
	counts := flag.String("n", "655360", "comma-separated element counts or dataset paths")
	minRuns := flag.Int("min-runs", 10, "minimum iterations per task")
	minSeconds := flag.Float64("min-seconds", 10, "minimum wall-seconds per task")
	debug := flag.Bool("debug", false, "log every run")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	for _, task := range strings.Split(*tasks, ",") {
		bin := filepath.Join(*dir, "BM_"+task)
		for _, count := range strings.Split(*counts, ",") {
			for _, impl := range strings.Split(*impls, ",") {
				mean, runs, err := benchmark(log, bin, impl, *log2, count, *minRuns, *minSeconds)
				if err != nil {
					log.Error().Err(err).
						Str("task", task).Str("impl", impl).Str("n", count).
						Msg("benchmark failed")
					continue
				}
				log.Info().
					Str("task", task).Str("impl", impl).Str("n", count).
					Int("runs", runs).Float64("mean", mean).
					Msg("benchmark done")
			}
		}
	}
}

func benchmark(log zerolog.Logger, bin, impl string, log2 uint, count string, minRuns int, minSeconds float64) (float64, int, error) {
	args := []string{impl, strconv.FormatUint(uint64(log2), 10), count}
	log.Debug().Str("bin", bin).Strs("args", args).Msg("running")
	var results []float64
	start := time.Now()
	for times := 0; times < minRuns || time.Since(start).Seconds() < minSeconds; times++ {
		result, err := runOnce(bin, args)
		if err != nil {
			log.Error().Err(err).Str("bin", bin).Int("run", times+1).Msg("run failed")
			continue
		}
		log.Debug().Int("run", times+1).Float64("result", result).Msg("run done")
		results = append(results, result)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no successful runs of %s %s", bin, strings.Join(args, " "))
	}
	var sum float64
	for _, r := range results {
		sum += r
	}
	return sum / float64(len(results)), len(results), nil
}

func runOnce(bin string, args []string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), RUN_TIMEOUT)
	defer cancel()
	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return 0, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return 0, err
	}
	result, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("bad task output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return result, nil
}
