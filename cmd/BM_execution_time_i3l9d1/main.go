// Measures a mixed workload: every insert after the fourth is followed
// by three lookbehind queries (the key just inserted and the two before
// it), and the first tenth of the keys is deleted at the end, so the
// operation mix is about 10 inserts : 30 lookups : 1 delete.
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
	start := time.Now()
	for i, key := range keys {
		if st := filter.Insert(key); st != dff.Ok {
			return 0, fmt.Errorf("insert %d at %d/%d: %s", key, i, len(keys)-1, st)
		}
		if i > 3 {
			for back := 0; back < 3; back++ {
				if filter.Query(keys[i-back]) != dff.Ok {
					return 0, fmt.Errorf("false negative: key %d at %d/%d", keys[i-back], i-back, len(keys)-1)
				}
			}
		}
	}
	for i := 0; i < len(keys)/10; i++ {
		if st := filter.Remove(keys[i]); st != dff.Ok {
			return 0, fmt.Errorf("remove %d at %d/%d: %s", keys[i], i, len(keys)-1, st)
		}
	}
	return time.Since(start).Seconds(), nil
}
