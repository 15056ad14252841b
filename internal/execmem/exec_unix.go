//go:build linux || darwin || freebsd

package execmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Supported reports whether Load can map code on this OS
const Supported = true

// Load copies code into a fresh mapping and turns it executable. The mapping
// is never writable and executable at the same time.
func Load(code []byte) (*Page, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("no code to load")
	}
	size := roundUp(len(code), unix.Getpagesize())
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		unix.Munmap(mem)
		return nil, fmt.Errorf("mprotect failed: %w", err)
	}
	return &Page{mem: mem, size: len(code)}, nil
}

func unmap(mem []byte) error {
	return unix.Munmap(mem)
}
