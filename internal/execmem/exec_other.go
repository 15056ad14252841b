//go:build !(linux || darwin || freebsd)

package execmem

// Supported reports whether Load can map code on this OS
const Supported = false

// Load always fails on this OS
func Load(code []byte) (*Page, error) {
	return nil, ErrUnsupported
}

func unmap(mem []byte) error {
	return ErrUnsupported
}
