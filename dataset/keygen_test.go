package dataset

import "testing"

func TestKeysDeterministic(t *testing.T) {
	a := Keys("seed", 1000)
	b := Keys("seed", 1000)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("stream diverged at %d", i)
		}
	}
	c := Keys("other-seed", 1000)
	var same int
	for i := range a {
		if a[i] == c[i] {
			same++
		}
	}
	if same == len(a) {
		t.Fatal("different seeds produced the same stream")
	}
}

func TestKeysDistinctAndOrdered(t *testing.T) {
	keys := Keys("seed", 100000)
	if len(keys) != 100000 {
		t.Fatalf("got %d keys", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i] <= keys[i-1] {
			t.Fatalf("keys not strictly increasing at %d: %d then %d", i, keys[i-1], keys[i])
		}
	}
}
