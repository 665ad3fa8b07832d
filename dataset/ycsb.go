package dataset

import (
	"bufio"
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
)

// ReadYCSB loads a YCSB trace. The raw lines are the keys; string-keyed
// filter runs insert them as-is.
func ReadYCSB(pathname string) ([]string, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, fmt.Errorf("err opening trace: %w", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("err reading trace: %w", err)
	}
	return lines, nil
}

// YCSBKeys maps trace lines to 64-bit keys for integer-keyed consumers.
func YCSBKeys(lines []string) []uint64 {
	keys := make([]uint64, len(lines))
	for i, line := range lines {
		keys[i] = xxhash.Sum64String(line)
	}
	return keys
}
