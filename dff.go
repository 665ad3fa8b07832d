// Package dff implements a dynamic fingerprint filter: an approximate
// membership set with insertion, deletion and membership testing, no
// false negatives, and a tunable false-positive rate. The filter grows
// by splitting fixed-size cuckoo segments independently, and every
// lookup routes to its segment in constant time through a flat
// addressing table, so throughput stays stable across many orders of
// growth.
package dff

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/intob/dff/logger"
)

const (
	LOOKUP_TABLE_SIZE = 4096 // Entries in the flat addressing table. Must be a power of 2.
	BUCKETS_PER_SEG   = 4096 // Buckets per segment. Must be a power of 2, equal to LOOKUP_TABLE_SIZE.
	SLOTS_PER_BUCKET  = 4    // Tag slots per bucket.
	INITIAL_SEG_COUNT = 4    // Segments at construction. Must divide LOOKUP_TABLE_SIZE.
	MAX_KICK_COUNT    = 500  // Cuckoo kicks before an insert parks a victim and gives up.

	// ENTRIES_PER_SEG is the fan-in of each segment at construction.
	ENTRIES_PER_SEG  = LOOKUP_TABLE_SIZE / INITIAL_SEG_COUNT
	entriesPerSegLog = 10
	lookupTableMask  = LOOKUP_TABLE_SIZE - 1
)

// The addressing scheme shares the low hash bits between the bucket
// index and the lookup-table entry; it is only coherent when the two
// tables are the same size. These fail the build on violation.
const (
	_ = -uint(BUCKETS_PER_SEG ^ LOOKUP_TABLE_SIZE)
	_ = -uint(ENTRIES_PER_SEG ^ (1 << entriesPerSegLog))
)

// Key is the set of key types the filter hashes natively.
type Key interface {
	uint64 | string | []byte
}

type Cfg struct {
	// InitialBitsPerItem is the fingerprint width of segments created
	// at construction, in [1, 31]. Wider fingerprints lower the
	// false-positive rate and raise memory use.
	InitialBitsPerItem uint
	// FingerprintGrowth widens fingerprints by one bit on each split.
	// When a tag's fingerprint is exhausted, the split keeps it in both
	// child segments: correctness is preserved at some space cost, so
	// the theoretical unbounded-capacity bound is not reached.
	FingerprintGrowth bool
	// TrackExpansionTime and TrackAddressingTime accumulate wall-clock
	// totals for benchmark builds. Leave unset in production.
	TrackExpansionTime  bool
	TrackAddressingTime bool
	Logger              logger.Logger
}

// Filter is a dynamic fingerprint filter over keys of type K. Not safe
// for concurrent use: a split rewires the lookup table globally, so a
// host needing concurrency must wrap the whole filter in a mutex.
type Filter[K Key] struct {
	initialBits  uint
	growth       bool
	seed         uint64
	head, tail   *segment
	lookup       [LOOKUP_TABLE_SIZE]*segment
	expansions   [LOOKUP_TABLE_SIZE]uint
	maxExpansion [INITIAL_SEG_COUNT]uint
	numSeg       int
	log          logger.Logger

	trackExpansion    bool
	trackAddressing   bool
	expansionSeconds  float64
	addressingSeconds float64
}

func New[K Key](cfg *Cfg) (*Filter[K], error) {
	if cfg == nil {
		return nil, errors.New("cfg is nil")
	}
	if cfg.InitialBitsPerItem < 1 || cfg.InitialBitsPerItem > 31 {
		return nil, fmt.Errorf("initial bits per item %d out of range [1, 31]", cfg.InitialBitsPerItem)
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewDevNull()
	}
	f := &Filter[K]{
		initialBits:     cfg.InitialBitsPerItem,
		growth:          cfg.FingerprintGrowth,
		seed:            generateSeed(),
		numSeg:          INITIAL_SEG_COUNT,
		log:             log,
		trackExpansion:  cfg.TrackExpansionTime,
		trackAddressing: cfg.TrackAddressingTime,
	}
	for i := 0; i < INITIAL_SEG_COUNT; i++ {
		seg := newSegment(cfg.InitialBitsPerItem, cfg.InitialBitsPerItem, cfg.FingerprintGrowth)
		if f.head == nil {
			f.head = seg
		} else {
			f.tail.next = seg
		}
		f.tail = seg
		for e := uint32(i) * ENTRIES_PER_SEG; e < uint32(i+1)*ENTRIES_PER_SEG; e++ {
			f.lookup[e] = seg
			seg.lutSlots = append(seg.lutSlots, e)
		}
	}
	return f, nil
}

// generateSeed draws the process-lifetime hash seed. A random seed
// isolates consecutive workloads in one process from correlated-tag
// patterns; two filters over the same key stream are not bit-identical.
func generateSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// index derives the bucket index and the 32-bit sub-hash for a key. The
// low half of the digest carries the lookup-table entry, the expansion
// bits and the tag; the high half carries the bucket index, which no
// split ever consumes, so a key's bucket is stable across splits.
func (f *Filter[K]) index(key K) (bucketIdx, hash uint32) {
	full := f.hashKey(key)
	return indexHash(uint32(full >> 32)), uint32(full)
}

// segmentIndex maps a sub-hash to its lookup-table entry in constant
// time: the entry the hash would use with no splits, corrected by the
// region's deepest split count. The d high bits of the hash select a
// child at stride ENTRIES_PER_SEG>>d, a trie descent collapsed into one
// multiply.
func (f *Filter[K]) segmentIndex(hash uint32) uint32 {
	initial := hash & lookupTableMask
	d := f.maxExpansion[initial>>entriesPerSegLog]
	return initial>>entriesPerSegLog<<entriesPerSegLog +
		uint32(uint64(hash)>>(32-d))*uint32(ENTRIES_PER_SEG>>d)
}

// Insert adds a key to the filter. On Ok the key is guaranteed to be
// found by Query until removed. On any other status the caller must
// stop inserting: further inserts risk false negatives. Query and
// Remove stay safe.
func (f *Filter[K]) Insert(key K) Status {
	bucketIdx, hash := f.index(key)
	segIdx := f.segmentIndex(hash)
	seg := f.lookup[segIdx]
	res := seg.insert(bucketIdx, hash)
	if res == NotEnoughSpace || seg.numItems > seg.capacity {
		st := f.split(segIdx, seg)
		if st != Ok {
			if res == Ok {
				return res
			}
			return st
		}
		if res == NotEnoughSpace {
			// The split drained the victim, so the insert landed.
			res = Ok
		}
	}
	return res
}

// Query reports whether a key may be in the filter. No side effects.
func (f *Filter[K]) Query(key K) Status {
	if f.trackAddressing {
		start := time.Now()
		bucketIdx, hash := f.index(key)
		segIdx := f.segmentIndex(hash)
		f.addressingSeconds += time.Since(start).Seconds()
		return f.lookup[segIdx].query(bucketIdx, hash)
	}
	bucketIdx, hash := f.index(key)
	return f.lookup[f.segmentIndex(hash)].query(bucketIdx, hash)
}

// Remove deletes one occurrence of a key. Removing a key that was never
// inserted may delete another key's colliding tag, as in any cuckoo
// filter; callers must only remove keys they inserted.
func (f *Filter[K]) Remove(key K) Status {
	bucketIdx, hash := f.index(key)
	return f.lookup[f.segmentIndex(hash)].remove(bucketIdx, hash)
}

// split subdivides an overflowing segment: a new segment takes the
// upper half of the fan-in and every tag whose discriminant bit is set.
// Tags keep their (bucket, slot) coordinates; only the routing changes.
func (f *Filter[K]) split(segIdx uint32, seg *segment) Status {
	var start time.Time
	if f.trackExpansion {
		start = time.Now()
	}
	if len(seg.lutSlots) < 2 {
		// Fan-in of one: the hard capacity ceiling for this geometry.
		return NotSupported
	}
	fpBits := f.initialBits
	if f.growth {
		fpBits = seg.fpBits + 1
	}
	newSeg := newSegment(fpBits, f.initialBits, f.growth)
	f.numSeg++
	f.tail.next = newSeg
	f.tail = newSeg
	depth := f.expansions[segIdx] // split depth before this split
	var exhausted int

	for bucket := uint32(0); bucket < BUCKETS_PER_SEG; bucket++ {
		for slot := uint32(0); slot < SLOTS_PER_BUCKET; slot++ {
			tag := seg.table.readTag(bucket, slot)
			if tag == 0 {
				continue
			}
			move, clear := f.splitTag(seg, tag, depth)
			if move && !clear {
				exhausted++
			}
			if clear {
				seg.table.removeTag(bucket, slot)
				seg.numItems--
			}
			if move {
				if f.growth {
					newSeg.table.writeTag(bucket, slot, tag<<1)
				} else {
					newSeg.table.writeTag(bucket, slot, tag)
				}
				newSeg.numItems++
			}
		}
	}

	half := len(seg.lutSlots) >> 1
	for _, e := range seg.lutSlots[half:] {
		newSeg.lutSlots = append(newSeg.lutSlots, e)
		f.lookup[e] = newSeg
	}
	for _, e := range seg.lutSlots {
		f.expansions[e]++
	}
	region := segIdx >> entriesPerSegLog
	if f.expansions[segIdx] > f.maxExpansion[region] {
		f.maxExpansion[region] = f.expansions[segIdx]
	}
	seg.lutSlots = seg.lutSlots[:half]

	if seg.victim.used {
		f.drainVictim(seg, newSeg, depth)
	}

	f.log.Debug("split depth %d: %d/%d items moved, %d segments, %d bits per item",
		depth+1, newSeg.numItems, seg.numItems+newSeg.numItems, f.numSeg, fpBits)
	if exhausted > 0 {
		f.log.Debug("fingerprints exhausted for %d tags, kept in both segments", exhausted)
	}
	if f.trackExpansion {
		f.expansionSeconds += time.Since(start).Seconds()
	}
	return Ok
}

// splitTag decides a tag's fate by the discriminant bit: the
// fingerprint bit the routing consumes at this depth. An exhausted
// fingerprint has no bit left to consume, so the tag stays in both
// child segments to preserve the no-false-negative guarantee.
func (f *Filter[K]) splitTag(seg *segment, tag uint32, depth uint) (move, clear bool) {
	if f.growth {
		if depth >= seg.fpBits-uint(bits.TrailingZeros32(tag)) {
			return true, false
		}
		move = tag>>(seg.fpBits-depth)&1 == 1
		return move, move
	}
	if depth+1 >= f.initialBits {
		return true, false
	}
	move = tag>>(f.initialBits-1-depth)&1 == 1
	return move, move
}

// drainVictim re-homes a split segment's parked tag, routed by the same
// discriminant rule as stored tags. The target segment is half empty,
// so the reinsert all but always lands in a slot; if it does not, the
// tag is parked again and the guarantee holds.
func (f *Filter[K]) drainVictim(seg, newSeg *segment, depth uint) {
	v := seg.victim
	seg.victim.used = false
	move, clear := f.splitTag(seg, v.tag, depth)
	if !move || !clear {
		seg.insertTag(v.index, v.tag)
	}
	if move {
		if f.growth {
			newSeg.insertTag(v.index, v.tag<<1)
		} else {
			newSeg.insertTag(v.index, v.tag)
		}
	}
}

// Compact is reserved for future space reclamation. It preserves all
// invariants and returns Ok without acting.
func (f *Filter[K]) Compact() Status {
	return Ok
}

// Count is the number of stored tags, parked victims included.
func (f *Filter[K]) Count() int {
	var count int
	for seg := f.head; seg != nil; seg = seg.next {
		count += seg.numItems
		if seg.victim.used {
			count++
		}
	}
	return count
}

func (f *Filter[K]) NumSegments() int {
	return f.numSeg
}

// SpaceUsage is the total allocated tag storage across all segments,
// in bits.
func (f *Filter[K]) SpaceUsage() uint64 {
	var size uint64
	for seg := f.head; seg != nil; seg = seg.next {
		size += seg.table.sizeBits()
	}
	return size
}

// ExpansionSeconds is the accumulated wall-clock time spent in splits.
// Only tracked when Cfg.TrackExpansionTime is set.
func (f *Filter[K]) ExpansionSeconds() float64 {
	return f.expansionSeconds
}

// AddressingSeconds is the accumulated wall-clock time spent hashing
// and routing queries. Only tracked when Cfg.TrackAddressingTime is set.
func (f *Filter[K]) AddressingSeconds() float64 {
	return f.addressingSeconds
}
