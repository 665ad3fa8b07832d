// Measures the wall-clock time to query every inserted key. The third
// argument may be an element count or a CAIDA trace path.
package main

import (
	"fmt"
	"time"

	"github.com/intob/dff"
	"github.com/intob/dff/bench"
)

func main() {
	bench.Register("DFF", func(keys []uint64, _ uint) (float64, error) {
		return run(keys, false)
	})
	bench.Register("DFF_FG", func(keys []uint64, _ uint) (float64, error) {
		return run(keys, true)
	})
	bench.TaskMain()
}

func run(keys []uint64, growth bool) (float64, error) {
	filter, err := dff.New[uint64](&dff.Cfg{InitialBitsPerItem: 16, FingerprintGrowth: growth})
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if st := filter.Insert(key); st != dff.Ok {
			return 0, fmt.Errorf("insert %d at %d/%d: %s", key, i, len(keys)-1, st)
		}
	}
	start := time.Now()
	for i, key := range keys {
		if filter.Query(key) != dff.Ok {
			return 0, fmt.Errorf("false negative: key %d at %d/%d", key, i, len(keys)-1)
		}
	}
	return time.Since(start).Seconds(), nil
}
