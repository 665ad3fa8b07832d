// Measures the wall-clock time to query keys disjoint from the
// inserted set.
package main

import (
	"fmt"
	"time"

	"github.com/intob/dff"
	"github.com/intob/dff/bench"
)

func main() {
	bench.Register("DFF", func(keys []uint64, _ uint) (float64, error) {
		return run(len(keys), false)
	})
	bench.Register("DFF_FG", func(keys []uint64, _ uint) (float64, error) {
		return run(len(keys), true)
	})
	bench.TaskMain()
}

func run(n int, growth bool) (float64, error) {
	inserted, disjoint := bench.SplitKeys(n)
	filter, err := dff.New[uint64](&dff.Cfg{InitialBitsPerItem: 16, FingerprintGrowth: growth})
	if err != nil {
		return 0, err
	}
	for i, key := range inserted {
		if st := filter.Insert(key); st != dff.Ok {
			return 0, fmt.Errorf("insert %d at %d/%d: %s", key, i, n-1, st)
		}
	}
	start := time.Now()
	for _, key := range disjoint {
		filter.Query(key)
	}
	return time.Since(start).Seconds(), nil
}
