package jit

import (
	"fmt"
	"io"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/codegen/amd64"
	"github.com/xyproto/stackjit/internal/codegen/interp"
	"github.com/xyproto/stackjit/internal/engine"
)

const (
	BackendAuto   = "auto"
	BackendNative = "native"
	BackendInterp = "interp"
)

// Backends lists the names accepted by OpenBackend
var Backends = []string{BackendAuto, BackendNative, BackendInterp}

// OpenBackend creates the code generation module called name. "auto" picks
// the native backend when the host has one and the interpreter otherwise.
// trace, when not nil, receives the native backend's instruction listing.
func OpenBackend(name string, trace io.Writer) (codegen.Module, error) {
	switch name {
	case BackendAuto, "":
		if engine.Host().SupportsNative() {
			return OpenBackend(BackendNative, trace)
		}
		return OpenBackend(BackendInterp, trace)
	case BackendNative:
		m, err := amd64.NewModule(trace)
		if err != nil {
			return nil, err
		}
		return m, nil
	case BackendInterp:
		return interp.NewModule(), nil
	}
	return nil, fmt.Errorf("%w: %q", codegen.ErrUnknownBackend, name)
}
