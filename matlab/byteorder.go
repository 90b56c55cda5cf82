package matlab

import "encoding/binary"

// ByteOrder is the order multi-byte values are stored in a file.
type ByteOrder uint8

const (
	// Native defers to the host byte order. It is what a file gets when its
	// header carries no recognisable endian indicator.
	Native ByteOrder = iota
	Little
	Big
)

func (o ByteOrder) String() string {
	switch o {
	case Little:
		return "little-endian"
	case Big:
		return "big-endian"
	default:
		return "native"
	}
}

// Binary returns the encoding/binary order matching o.
func (o ByteOrder) Binary() binary.ByteOrder {
	switch o {
	case Little:
		return binary.LittleEndian
	case Big:
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

// ResolveByteOrder maps the two byte endian indicator found at header offset
// 126 to a ByteOrder. The writer stores the characters 'M','I' as a 16 bit
// value, so a reader on the other endianness sees "IM".
func ResolveByteOrder(marker []byte) ByteOrder {
	if len(marker) != 2 {
		return Native
	}
	switch string(marker) {
	case "MI":
		return Big
	case "IM":
		return Little
	default:
		return Native
	}
}
