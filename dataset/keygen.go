package dataset

import (
	"encoding/binary"
	"io"
	"math"

	"lukechampine.com/blake3"
)

// Keys derives n distinct 64-bit keys from a seed string. The stream is
// deterministic, so benchmark task processes agree on the keys without
// sharing state. Key i lies in [stride*i, stride*(i+1)) for
// stride = (2^64-1)/n: evenly strided over the key space with random
// jitter, distinct without a dedup pass.
func Keys(seed string, n int) []uint64 {
	if n < 1 {
		return nil
	}
	h := blake3.New(32, nil)
	h.Write([]byte(seed))
	xof := h.XOF()
	stride := uint64(math.MaxUint64) / uint64(n)
	keys := make([]uint64, n)
	var b [8]byte
	for i := range keys {
		if _, err := io.ReadFull(xof, b[:]); err != nil {
			panic(err)
		}
		keys[i] = stride*uint64(i) + binary.LittleEndian.Uint64(b[:])%stride
	}
	return keys
}
