package heap

import (
	"math/bits"
	"strconv"
)

// Tag identifies the variant of a heap value.
type Tag uint8

const (
	TagNull Tag = iota
	TagFixnum
	TagPair
	TagString
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagFixnum:
		return "fixnum"
	case TagPair:
		return "pair"
	case TagString:
		return "string"
	default:
		return "tag(" + strconv.Itoa(int(t)) + ")"
	}
}

const (
	// WordSize is the machine word width in bytes.
	WordSize = bits.UintSize / 8

	// ObjectAlignment is the granularity of every heap allocation.
	ObjectAlignment = 2 * WordSize

	// FixnumBits is the payload width of a fixnum; the remaining bits of a
	// word are reserved for the immediate tag.
	FixnumBits = bits.UintSize - 3

	MaxFixnum = 1<<(FixnumBits-1) - 1
	MinFixnum = -1 << (FixnumBits - 1)
)

// Value is a heap value: Null, Fixnum or Ref.
type Value interface {
	Tag() Tag
}

// Null is the empty-list sentinel.
type Null struct{}

func (Null) Tag() Tag { return TagNull }

// Empty is the well-known empty list.
var Empty Value = Null{}

// Fixnum is an immediate integer restricted to FixnumBits.
type Fixnum int64

func (Fixnum) Tag() Tag { return TagFixnum }

// MakeFixnum returns n as a Fixnum, or false when n is out of range.
func MakeFixnum(n int64) (Fixnum, bool) {
	if n < MinFixnum || n > MaxFixnum {
		return 0, false
	}
	return Fixnum(n), true
}

// Handle indexes the arena. Handle 0 is reserved and always invalid.
type Handle uint32

// Ref references an arena object together with its tag.
type Ref struct {
	handle Handle
	tag    Tag
}

func (r Ref) Tag() Tag { return r.tag }

// Handle returns the arena slot of r.
func (r Ref) Handle() Handle { return r.handle }

// IsNull reports whether v is the empty list.
func IsNull(v Value) bool {
	return v != nil && v.Tag() == TagNull
}

// Align rounds n up to a multiple of ObjectAlignment.
func Align(n int) int {
	return (n + ObjectAlignment - 1) &^ (ObjectAlignment - 1)
}
