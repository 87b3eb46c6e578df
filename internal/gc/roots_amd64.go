//go:build amd64

package gc

// archStackPointer and archCalleeSavedRegisters are implemented in
// roots_amd64.s. Both read the calling goroutine's own machine state
// synchronously, at the point they're called -- there is no cross-goroutine
// register or stack access anywhere in this package.
func archStackPointer() uintptr

func archCalleeSavedRegisters() calleeSavedRegisters
