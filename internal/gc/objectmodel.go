package gc

// objectmodel.go decodes the single alloc-map byte that describes an
// object's layout: whether it starts here, whether this byte fully encodes
// it, and which of its first six words are heap references.

import "fmt"

const (
	// ObjStartBit marks the alloc-map byte as the first byte of an object.
	ObjStartBit = 1 << 6

	// ShortEncodeBit marks the alloc-map byte as fully describing the
	// object; when clear, the tracer must keep walking forward in
	// six-word strides for more reference-bitmap bytes.
	ShortEncodeBit = 1 << 7

	// RefBitsMask isolates the 6-bit reference bitmap in the low bits of
	// an encoding byte.
	RefBitsMask = 0b0011_1111

	// RefBitsLen is the number of words one encoding byte describes.
	RefBitsLen = 6
)

// Encode builds an alloc-map byte from its three components.
func Encode(objStart, shortEncode bool, refBits uint8) byte {
	var b byte

	if objStart {
		b |= ObjStartBit
	}

	if shortEncode {
		b |= ShortEncodeBit
	}

	b |= refBits & RefBitsMask

	return b
}

// IsObjectStart reports whether the alloc-map byte marks an object start.
func IsObjectStart(b byte) bool {
	return b&ObjStartBit != 0
}

// IsShortEncode reports whether the alloc-map byte is the object's only
// encoding byte.
func IsShortEncode(b byte) bool {
	return b&ShortEncodeBit != 0
}

// RefBits returns the 6-bit reference bitmap carried by the alloc-map byte.
func RefBits(b byte) uint8 {
	return b & RefBitsMask
}

// knownRefBitPatterns is the closed enumeration the tracer understands. Per
// spec, any other pattern encountered while scanning a short-encoded object
// is a programming error in the caller's encoding, not a case to handle
// gracefully.
var knownRefBitPatterns = map[uint8]bool{
	0b000001: true,
	0b000011: true,
	0b001111: true,
}

// ValidateRefBits reports ErrBadEncoding if bits isn't one of the closed set
// of reference-bit patterns the tracer will walk.
func ValidateRefBits(bits uint8) error {
	if !knownRefBitPatterns[bits] {
		return fmt.Errorf("%w: %#08b", ErrBadEncoding, bits)
	}

	return nil
}
