package gc

// address.go defines the machine address and object reference wrappers used
// throughout the collector. Both are thin, strongly-typed views over a
// uintptr so that address arithmetic can't be accidentally mixed with plain
// integer arithmetic elsewhere in the package.

import (
	"fmt"
	"unsafe"
)

// PointerSize is the size, in bytes, of a pointer-aligned slot. Every side
// table in the collector is indexed at this granularity.
const PointerSize = unsafe.Sizeof(uintptr(0))

// Address is a machine address: either a real virtual address inside the
// Immix space's mmap'd region, or an address handed out by the freelist
// space's host allocation. The zero Address is "null" and is never returned
// from a successful allocation.
type Address uintptr

// NullAddress is the zero address.
const NullAddress Address = 0

// IsZero reports whether addr is the null address.
func (addr Address) IsZero() bool {
	return addr == NullAddress
}

// Plus returns addr advanced by n bytes.
func (addr Address) Plus(n uintptr) Address {
	return addr + Address(n)
}

// Minus returns addr retreated by n bytes.
func (addr Address) Minus(n uintptr) Address {
	return addr - Address(n)
}

// Diff returns the number of bytes between addr and another, which must not
// be greater than addr.
func (addr Address) Diff(another Address) uintptr {
	if addr < another {
		panic(fmt.Sprintf("gc: Address.Diff: %s < %s", addr, another))
	}

	return uintptr(addr - another)
}

// AlignUp rounds addr up to the next multiple of align, which must be a
// power of two.
func (addr Address) AlignUp(align uintptr) Address {
	a := Address(align)
	return (addr + a - 1) &^ (a - 1)
}

// AlignDown rounds addr down to the previous multiple of align, which must
// be a power of two.
func (addr Address) AlignDown(align uintptr) Address {
	a := Address(align)
	return addr &^ (a - 1)
}

// Aligned reports whether addr is a multiple of align, a power of two.
func (addr Address) Aligned(align uintptr) bool {
	a := Address(align)
	return addr&(a-1) == 0
}

// ToObjectReference reinterprets addr as the start of an object. Callers are
// responsible for addr actually being a valid object start -- the collector
// does not check this.
func (addr Address) ToObjectReference() ObjectReference {
	return ObjectReference(addr)
}

// Pointer returns addr as an unsafe.Pointer, for use with the raw load/store
// helpers below.
func (addr Address) Pointer() unsafe.Pointer {
	return unsafe.Pointer(addr) //nolint:govet // intentional uintptr->pointer conversion
}

// FromPointer converts a Go pointer to an Address.
func FromPointer(ptr unsafe.Pointer) Address {
	return Address(uintptr(ptr))
}

func (addr Address) String() string {
	return fmt.Sprintf("%#016x", uintptr(addr))
}

// ObjectReference is a heap address that points at the first byte of an
// object, i.e. the address the allocator returned for it.
type ObjectReference Address

// NullReference is the object reference equivalent of NullAddress.
const NullReference ObjectReference = 0

// IsZero reports whether ref is the null reference.
func (ref ObjectReference) IsZero() bool {
	return ref == NullReference
}

// ToAddress returns the address the reference points to.
func (ref ObjectReference) ToAddress() Address {
	return Address(ref)
}

func (ref ObjectReference) String() string {
	return ref.ToAddress().String()
}

// LoadAddress reads a pointer-sized value from memory at addr. It is used
// both to chase reference-bitmap edges during tracing and by the
// conservative stack/register scanner.
func LoadAddress(addr Address) Address {
	return *(*Address)(addr.Pointer())
}

// StoreAddress writes a pointer-sized value to memory at addr.
func StoreAddress(addr Address, value Address) {
	*(*Address)(addr.Pointer()) = value
}

// LoadByte reads a single byte from memory at addr.
func LoadByte(addr Address) byte {
	return *(*byte)(addr.Pointer())
}

// StoreByte writes a single byte to memory at addr.
func StoreByte(addr Address, value byte) {
	*(*byte)(addr.Pointer()) = value
}
