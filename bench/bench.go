// Package bench carries the shared plumbing of the benchmark task
// binaries. A task binary registers one task function per filter
// variant and hands control to TaskMain, which implements the
// sub-process contract: argv is
//
//	<task_name> <initial_capacity_log2> <element_count|dataset_path>
//
// and the process prints exactly one float on stdout, exiting non-zero
// on failure. The harness (cmd/dffbench) spawns task processes and
// aggregates the floats.
package bench

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/intob/dff/dataset"
)

// KeySeed fixes the benchmark key stream so that every task process
// derives the same keys without sharing state.
const KeySeed = "dff-bench-keys"

// TaskFunc measures one filter variant over a key stream and returns
// the metric (seconds, bits, or a rate, depending on the binary).
type TaskFunc func(keys []uint64, initialCapacityLog2 uint) (float64, error)

// StringTaskFunc is the string-keyed variant used by YCSB tasks.
type StringTaskFunc func(lines []string, initialCapacityLog2 uint) (float64, error)

var (
	tasks       = map[string]TaskFunc{}
	stringTasks = map[string]StringTaskFunc{}
)

func Register(name string, fn TaskFunc) {
	tasks[name] = fn
}

func RegisterString(name string, fn StringTaskFunc) {
	stringTasks[name] = fn
}

// SplitKeys derives one deterministic stream of 2n keys and splits it
// in half. The halves occupy disjoint strata of the key space, so the
// second half never collides with the inserted first half.
func SplitKeys(n int) (inserted, disjoint []uint64) {
	keys := dataset.Keys(KeySeed, 2*n)
	return keys[:n], keys[n:]
}

// TaskMain parses argv, resolves the task, runs it and prints the
// result. It never returns.
func TaskMain() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func run(argv []string, out io.Writer) error {
	if len(argv) < 4 {
		return fmt.Errorf("usage: %s {%s} <initial_capacity_log2> <element_count|dataset_path>",
			argv[0], strings.Join(names(), "|"))
	}
	name := argv[1]
	log2, err := strconv.ParseUint(argv[2], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid initial_capacity_log2 %q: %w", argv[2], err)
	}
	var result float64
	if fn, ok := stringTasks[name]; ok {
		lines, err := dataset.ReadYCSB(argv[3])
		if err != nil {
			return err
		}
		result, err = fn(lines, uint(log2))
		if err != nil {
			return err
		}
	} else if fn, ok := tasks[name]; ok {
		var keys []uint64
		if n, aerr := strconv.Atoi(argv[3]); aerr == nil {
			if n < 1 {
				return fmt.Errorf("element count must be positive, got %d", n)
			}
			keys = dataset.Keys(KeySeed, n)
		} else if keys, err = dataset.ReadCAIDA(argv[3]); err != nil {
			return err
		}
		result, err = fn(keys, uint(log2))
		if err != nil {
			return err
		}
	} else {
		return fmt.Errorf("unknown task %q, have {%s}", name, strings.Join(names(), "|"))
	}
	_, err = fmt.Fprintln(out, strconv.FormatFloat(result, 'g', -1, 64))
	return err
}

func names() []string {
	var all []string
	for name := range tasks {
		all = append(all, name)
	}
	for name := range stringTasks {
		all = append(all, name)
	}
	sort.Strings(all)
	return all
}
