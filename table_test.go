package dff

import (
	"math/bits"
	"testing"
)

func TestReadWriteTagOddWidths(t *testing.T) {
	for _, width := range []uint{5, 12, 13, 16, 23, 31} {
		tb := newTable(BUCKETS_PER_SEG, width, false)
		mask := uint32(1)<<width - 1
		tagAt := func(bucket, slot uint32) uint32 {
			tag := (bucket*SLOTS_PER_BUCKET + slot + 1) & mask
			if tag == 0 {
				tag = 1
			}
			return tag
		}
		for bucket := uint32(0); bucket < BUCKETS_PER_SEG; bucket++ {
			for slot := uint32(0); slot < SLOTS_PER_BUCKET; slot++ {
				tb.writeTag(bucket, slot, tagAt(bucket, slot))
			}
		}
		for bucket := uint32(0); bucket < BUCKETS_PER_SEG; bucket++ {
			for slot := uint32(0); slot < SLOTS_PER_BUCKET; slot++ {
				got := tb.readTag(bucket, slot)
				if got != tagAt(bucket, slot) {
					t.Fatalf("width %d bucket %d slot %d: got %#x, want %#x",
						width, bucket, slot, got, tagAt(bucket, slot))
				}
			}
		}
	}
}

func TestWriteTagKeepsNeighbors(t *testing.T) {
	tb := newTable(BUCKETS_PER_SEG, 13, false)
	for slot := uint32(0); slot < SLOTS_PER_BUCKET; slot++ {
		tb.writeTag(7, slot, 0x1fff)
	}
	tb.writeTag(7, 2, 0x0001)
	for slot := uint32(0); slot < SLOTS_PER_BUCKET; slot++ {
		want := uint32(0x1fff)
		if slot == 2 {
			want = 1
		}
		if got := tb.readTag(7, slot); got != want {
			t.Errorf("slot %d: got %#x, want %#x", slot, got, want)
		}
	}
	if got := tb.readTag(6, 3); got != 0 {
		t.Errorf("bucket 6 slot 3: got %#x, want 0", got)
	}
	if got := tb.readTag(8, 0); got != 0 {
		t.Errorf("bucket 8 slot 0: got %#x, want 0", got)
	}
}

func TestGenTag(t *testing.T) {
	tb := newTable(BUCKETS_PER_SEG, 16, false)
	if got := tb.genTag(0xabcd1234); got != 0xabcd {
		t.Errorf("got %#x, want 0xabcd", got)
	}
	if got := tb.genTag(0x00001234); got != 1 {
		t.Errorf("zero tag must be forced to 1, got %#x", got)
	}
	gt := newTable(BUCKETS_PER_SEG, 16, true)
	if got := gt.genTag(0xabcd1234); got != 0xabcd<<1|1 {
		t.Errorf("growth tag: got %#x, want %#x", got, 0xabcd<<1|1)
	}
	if got := gt.genTag(0x00001234); got != 1 {
		t.Errorf("growth zero fingerprint: got %#x, want 1", got)
	}
}

func TestMatchesTagAged(t *testing.T) {
	// A 17-bit segment holds fresh 17-bit fingerprints alongside 16-bit
	// fingerprints inherited from its parent, shifted up by one split.
	tb := newTable(BUCKETS_PER_SEG, 17, true)
	hash := uint32(0xfeedc0de)
	fresh := tb.genTag(hash)
	aged := ((hash>>16)<<1 | 1) << 1
	if !tb.matchesTag(hash, fresh) {
		t.Error("fresh tag must match its own hash")
	}
	if !tb.matchesTag(hash, aged) {
		t.Error("aged tag must match through the unary age marker")
	}
	if tb.matchesTag(hash^0x80000000, fresh) {
		t.Error("flipped top bit must not match a fresh tag")
	}
	if tb.matchesTag(hash, 0) {
		t.Error("the empty sentinel must never match")
	}
}

func TestInsertTagToBucketKickout(t *testing.T) {
	tb := newTable(BUCKETS_PER_SEG, 16, false)
	for i := uint32(1); i <= SLOTS_PER_BUCKET; i++ {
		ok, _ := tb.insertTagToBucket(3, i, false)
		if !ok {
			t.Fatalf("insert %d into empty slot failed", i)
		}
	}
	if ok, _ := tb.insertTagToBucket(3, 99, false); ok {
		t.Fatal("insert into a full bucket without kickout must fail")
	}
	ok, old := tb.insertTagToBucket(3, 99, true)
	if ok {
		t.Fatal("kickout insert into a full bucket reported a free slot")
	}
	if old < 1 || old > SLOTS_PER_BUCKET {
		t.Fatalf("evicted tag %d was never inserted", old)
	}
	if !tb.findTagInBucket(3, 99) {
		t.Fatal("kicked-in tag not found")
	}
	if tb.findTagInBucket(3, old) {
		t.Fatal("evicted tag still present")
	}
}

func TestRemoveHashKeepsAgedCopy(t *testing.T) {
	// Two fingerprints of different ages for the same hash: removal
	// must take the one with the lowest trailing-zero count, so the
	// aged copy keeps answering for the key.
	tb := newTable(BUCKETS_PER_SEG, 17, true)
	hash := uint32(0xfeedc0de)
	fresh := tb.genTag(hash)
	aged := ((hash>>16)<<1 | 1) << 1
	if bits.TrailingZeros32(fresh) >= bits.TrailingZeros32(aged) {
		t.Fatal("test setup: fresh tag must have the lower trailing-zero count")
	}
	tb.writeTag(11, 0, aged)
	tb.writeTag(11, 1, fresh)
	if !tb.removeHashFromBuckets(11, 12, hash) {
		t.Fatal("remove found no match")
	}
	if tb.findTagInBucket(11, fresh) {
		t.Error("the longest fingerprint must be removed first")
	}
	if !tb.findTagInBucket(11, aged) {
		t.Error("the aged copy must survive")
	}
	if !tb.matchHashInBucket(11, hash) {
		t.Error("the key must still match after removal")
	}
}

func TestCountTagsInBucket(t *testing.T) {
	tb := newTable(BUCKETS_PER_SEG, 16, false)
	if got := tb.countTagsInBucket(0); got != 0 {
		t.Fatalf("empty bucket: got %d", got)
	}
	tb.writeTag(0, 1, 7)
	tb.writeTag(0, 3, 9)
	if got := tb.countTagsInBucket(0); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}
