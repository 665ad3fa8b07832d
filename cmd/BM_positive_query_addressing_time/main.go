// Measures the total wall-clock time spent hashing and routing
// positive queries.
package main

import (
	"fmt"

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
	filter, err := dff.New[uint64](&dff.Cfg{
		InitialBitsPerItem:  16,
		FingerprintGrowth:   growth,
		TrackAddressingTime: true,
	})
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if st := filter.Insert(key); st != dff.Ok {
			return 0, fmt.Errorf("insert %d at %d/%d: %s", key, i, len(keys)-1, st)
		}
	}
	for i, key := range keys {
		if filter.Query(key) != dff.Ok {
			return 0, fmt.Errorf("false negative: key %d at %d/%d", key, i, len(keys)-1)
		}
	}
	return filter.AddressingSeconds(), nil
}
