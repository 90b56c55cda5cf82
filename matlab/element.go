package matlab

// Element is a parsed matlab data element: a *Matrix, a *NumericArray or a
// *Skipped.
type Element interface {
	Type() DataType
	Value() interface{}
}

// Skipped stands in for a miMATRIX element whose contents were not decoded,
// either because its class is not supported or because it is empty.
type Skipped struct {
	Class  Class
	Name   string // empty when it could not be read
	Length uint32 // payload bytes stepped over
}

var _ Element = &Skipped{}

func (s *Skipped) Type() DataType {
	return DTmiMATRIX
}

func (s *Skipped) Value() interface{} {
	return nil
}

// Kind names the variant a top level element decoded to.
type Kind uint8

const (
	KindMatrix Kind = iota
	KindNumeric
	KindSkipped
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindMatrix:
		return "matrix"
	case KindNumeric:
		return "numeric"
	case KindSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Record describes one top level element in stream order.
type Record struct {
	Index  int
	Offset int64
	Kind   Kind
	Type   DataType // outer tag type, miCOMPRESSED when compressed
	Class  Class    // zero unless the element was a miMATRIX
	Name   string
	Length uint32
}
