package gc

// config.go parses the collector's one recognized environment variable and
// builds the sizes New needs.

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	// defaultHeapMiB is the total heap size, in MiB, used when HEAP_SIZE
	// isn't set.
	defaultHeapMiB = 500

	// immixShare and freelistShare split the configured heap 80/20
	// between the Immix space and the freelist space.
	immixShare    = 0.8
	freelistShare = 0.2
)

// Config holds the sizes and worker count New needs to build a Coordinator.
type Config struct {
	ImmixBytes    uintptr
	FreelistBytes uintptr
	Workers       int
}

// ConfigFromEnv builds a Config from the HEAP_SIZE environment variable, of
// the form "<N>M" (megabytes); HEAP_SIZE unset or empty uses the 500 MiB
// default. Workers defaults to runtime.GOMAXPROCS(0).
func ConfigFromEnv() (Config, error) {
	raw := os.Getenv("HEAP_SIZE")
	if raw == "" {
		return configFromMiB(defaultHeapMiB), nil
	}

	mib, err := parseHeapSize(raw)
	if err != nil {
		return Config{}, err
	}

	return configFromMiB(mib), nil
}

func parseHeapSize(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	trimmed := strings.TrimSuffix(s, "M")
	if trimmed == s {
		return 0, fmt.Errorf("%w: HEAP_SIZE %q must be of the form <N>M", ErrConfig, raw)
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: HEAP_SIZE %q is not a positive integer of MiB", ErrConfig, raw)
	}

	return n, nil
}

func configFromMiB(mib int) Config {
	total := uintptr(mib) * 1024 * 1024

	immixBytes := alignToBlock(uintptr(float64(total) * immixShare))
	freelistBytes := total - immixBytes

	return Config{
		ImmixBytes:    immixBytes,
		FreelistBytes: freelistBytes,
		Workers:       runtime.GOMAXPROCS(0),
	}
}

func alignToBlock(n uintptr) uintptr {
	if n%BytesInBlock == 0 {
		return n
	}

	return (n/BytesInBlock + 1) * BytesInBlock
}

func (c Config) String() string {
	return fmt.Sprintf("Config(immix=%d, freelist=%d, workers=%d)", c.ImmixBytes, c.FreelistBytes, c.Workers)
}
