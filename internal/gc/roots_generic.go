//go:build !amd64 && !arm64

package gc

// archStackPointer and archCalleeSavedRegisters have no assembly
// implementation outside amd64/arm64. On other architectures the stack and
// register halves of the conservative scan are skipped; only the mutator's
// explicitly declared roots (SetConservativeRoots) are scanned.
func archStackPointer() uintptr { return 0 }

func archCalleeSavedRegisters() calleeSavedRegisters { return calleeSavedRegisters{} }
