// Package dataset turns benchmark trace files and seeds into key
// streams for the filter benchmarks.
package dataset

import (
	"bufio"
	"fmt"
	"net/netip"
	"os"
	"strings"
)

// ReadCAIDA loads an anonymized CAIDA trace. Each line holds the source
// and destination IPv4 addresses of one flow separated by a space, and
// every line maps to one 64-bit key.
func ReadCAIDA(pathname string) ([]uint64, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, fmt.Errorf("err opening trace: %w", err)
	}
	defer f.Close()
	var keys []uint64
	sc := bufio.NewScanner(f)
	var line int
	for sc.Scan() {
		line++
		key, err := CAIDAKey(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		keys = append(keys, key)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("err reading trace: %w", err)
	}
	return keys, nil
}

// CAIDAKey packs a "src dst" flow line into uint64(src)<<32 | dst.
//
//	CAIDAKey("10.10.64.1 10.10.64.2") // => 723461063353974786
func CAIDAKey(line string) (uint64, error) {
	src, dst, found := strings.Cut(line, " ")
	if !found {
		return 0, fmt.Errorf("expected two addresses, got %q", line)
	}
	a, err := ipv4ToUint32(src)
	if err != nil {
		return 0, err
	}
	b, err := ipv4ToUint32(strings.TrimSpace(dst))
	if err != nil {
		return 0, err
	}
	return uint64(a)<<32 | uint64(b), nil
}

func ipv4ToUint32(s string) (uint32, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if !addr.Is4() {
		return 0, fmt.Errorf("not an IPv4 address: %q", s)
	}
	b := addr.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}
