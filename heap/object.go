package heap

// Object is an arena-resident heap object.
type Object interface {
	Tag() Tag
	// Size is the number of bytes charged for the object.
	Size() int
}

// Pair is a two-word cons cell.
type Pair struct {
	Car Value
	Cdr Value
}

func (*Pair) Tag() Tag { return TagPair }

// PairSize is the charged size of a pair.
const PairSize = 2 * WordSize

func (*Pair) Size() int { return PairSize }

// String is a length-prefixed byte string with a trailing terminator.
type String struct {
	length Fixnum
	data   []byte // length+1 bytes, last is 0
}

func (*String) Tag() Tag { return TagString }

// StringSize returns the charged size of a string holding n bytes.
func StringSize(n int) int {
	return Align(WordSize + n + 1)
}

func (s *String) Size() int { return StringSize(int(s.length)) }

// Length returns the byte length recorded in the length field.
func (s *String) Length() Fixnum { return s.length }

// Bytes returns the string contents without the terminator.
func (s *String) Bytes() []byte { return s.data[:s.length] }

func (s *String) String() string { return string(s.Bytes()) }

func newString(b []byte, n Fixnum) *String {
	data := make([]byte, len(b)+1)
	copy(data, b)
	return &String{length: n, data: data}
}
