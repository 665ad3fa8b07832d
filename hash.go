package dff

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// hashKey digests a key with the filter's seed. The high 32 bits of the
// result feed the bucket index; the low 32 bits feed the lookup-table
// entry, the expansion bits and the tag.
func (f *Filter[K]) hashKey(key K) uint64 {
	switch k := any(key).(type) {
	case uint64:
		var b [16]byte
		binary.LittleEndian.PutUint64(b[:8], f.seed)
		binary.LittleEndian.PutUint64(b[8:], k)
		return xxhash.Sum64(b[:])
	case string:
		return xxh3.HashStringSeed(k, f.seed)
	case []byte:
		return xxh3.HashSeed(k, f.seed)
	}
	panic("unsupported key type")
}
