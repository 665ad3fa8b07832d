package dff

import "testing"

func TestHashKeyDeterministic(t *testing.T) {
	f, err := New[uint64](&Cfg{InitialBitsPerItem: 16})
	if err != nil {
		t.Fatalf("failed to create filter: %v", err)
	}
	if f.hashKey(42) != f.hashKey(42) {
		t.Error("same key must hash identically within one filter")
	}
	if f.hashKey(42) == f.hashKey(43) {
		t.Error("adjacent keys collided, hash is not mixing")
	}
}

func TestHashKeySeedIsolation(t *testing.T) {
	a, err := New[uint64](&Cfg{InitialBitsPerItem: 16})
	if err != nil {
		t.Fatalf("failed to create filter: %v", err)
	}
	b, err := New[uint64](&Cfg{InitialBitsPerItem: 16})
	if err != nil {
		t.Fatalf("failed to create filter: %v", err)
	}
	b.seed = a.seed
	if a.hashKey(42) != b.hashKey(42) {
		t.Error("equal seeds must produce equal digests")
	}
	b.seed = a.seed + 1
	if a.hashKey(42) == b.hashKey(42) {
		t.Error("different seeds must not produce equal digests")
	}
}

func TestStringAndByteKeys(t *testing.T) {
	s, err := New[string](&Cfg{InitialBitsPerItem: 16})
	if err != nil {
		t.Fatalf("failed to create filter: %v", err)
	}
	if st := s.Insert("user4016442341"); st != Ok {
		t.Fatalf("insert: %s", st)
	}
	if st := s.Query("user4016442341"); st != Ok {
		t.Fatalf("query: %s", st)
	}
	if st := s.Remove("user4016442341"); st != Ok {
		t.Fatalf("remove: %s", st)
	}
	if st := s.Query("user4016442341"); st != NotFound {
		t.Fatalf("query after remove: %s", st)
	}

	b, err := New[[]byte](&Cfg{InitialBitsPerItem: 16})
	if err != nil {
		t.Fatalf("failed to create filter: %v", err)
	}
	key := []byte{0xde, 0xad, 0xbe, 0xef}
	if st := b.Insert(key); st != Ok {
		t.Fatalf("insert: %s", st)
	}
	if st := b.Query(key); st != Ok {
		t.Fatalf("query: %s", st)
	}
}
