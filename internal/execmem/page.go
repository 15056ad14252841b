// Package execmem maps machine code into executable memory.
package execmem

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrUnsupported is returned where the OS offers no way to map code
var ErrUnsupported = errors.New("executable memory is not supported on this platform")

// Page is a mapping holding the machine code of one routine. The mapping is
// readable and executable, never writable once loaded.
type Page struct {
	mem  []byte
	size int
}

// Addr returns the address of the first instruction, 0 for a nil or freed
// page.
func (p *Page) Addr() uintptr {
	if p == nil || p.mem == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(&p.mem[0]))
}

// Len returns the length of the loaded code
func (p *Page) Len() int {
	if p == nil {
		return 0
	}
	return p.size
}

// Free unmaps the page. Freeing twice is a no-op.
func (p *Page) Free() error {
	if p.mem == nil {
		return nil
	}
	if err := unmap(p.mem); err != nil {
		return fmt.Errorf("munmap failed: %w", err)
	}
	p.mem = nil
	p.size = 0
	return nil
}

func roundUp(n, pageSize int) int {
	return ((n + pageSize - 1) / pageSize) * pageSize
}
