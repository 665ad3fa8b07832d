// Measures query throughput over string keys from a YCSB trace. The
// third argument is the trace path.
package main

import (
	"fmt"
	"time"

	"github.com/intob/dff"
	"github.com/intob/dff/bench"
)

func main() {
	bench.RegisterString("DFF", func(lines []string, _ uint) (float64, error) {
		return run(lines, false)
	})
	bench.RegisterString("DFF_FG", func(lines []string, _ uint) (float64, error) {
		return run(lines, true)
	})
	bench.TaskMain()
}

func run(lines []string, growth bool) (float64, error) {
	filter, err := dff.New[string](&dff.Cfg{InitialBitsPerItem: 16, FingerprintGrowth: growth})
	if err != nil {
		return 0, err
	}
	for i, line := range lines {
		if st := filter.Insert(line); st != dff.Ok {
			return 0, fmt.Errorf("insert %q at %d/%d: %s", line, i, len(lines)-1, st)
		}
	}
	start := time.Now()
	for i, line := range lines {
		if filter.Query(line) != dff.Ok {
			return 0, fmt.Errorf("false negative: %q at %d/%d", line, i, len(lines)-1)
		}
	}
	return time.Since(start).Seconds(), nil
}
