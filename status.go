package dff

// Status is the result of a filter operation. Failure modes are
// explicit result codes, never panics.
type Status uint8

const (
	Ok Status = iota
	NotFound
	// NotEnoughSpace means the cuckoo kick limit was reached and the
	// displaced tag is parked in the segment's victim slot. The item is
	// still queryable, but the caller must stop inserting unless the
	// filter recovered by splitting.
	NotEnoughSpace
	// NotSupported means a segment overflowed but its lookup-table
	// fan-in is already one, so it cannot be subdivided. No further
	// inserts are safe.
	NotSupported
)

func (s Status) String() string {
	switch s {
	case Ok:
		return "Ok"
	case NotFound:
		return "NotFound"
	case NotEnoughSpace:
		return "NotEnoughSpace"
	case NotSupported:
		return "NotSupported"
	}
	return "Unknown"
}
