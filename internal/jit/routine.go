package jit

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/oklog/ulid/v2"

	"github.com/xyproto/stackjit/internal/codegen"
	"github.com/xyproto/stackjit/internal/ir"
)

// Routine is a compiled program. Running it removes Consumed values from the
// caller's stack and pushes Returned values in their place.
type Routine struct {
	ID       ulid.ULID // unique per compilation
	Consumed int
	Returned int

	code      codegen.Code
	sig       ir.Signature
	footprint ir.Footprint
	program   string
	backend   string
}

// Descriptor is a plain summary of a routine, for display
type Descriptor struct {
	ID        string
	Program   string
	Backend   string
	Consumed  int
	Returned  int
	CodeSize  int
	Footprint ir.Footprint

	// set by backends that spill
	FrameSlots int
	Spills     int
}

func (r *Routine) Descriptor() Descriptor {
	d := Descriptor{
		ID:        r.ID.String(),
		Program:   r.program,
		Backend:   r.backend,
		Consumed:  r.Consumed,
		Returned:  r.Returned,
		Footprint: r.footprint,
	}
	if r.code != nil {
		d.CodeSize = r.code.Size()
	}
	if s, ok := r.code.(codegen.Spiller); ok {
		d.FrameSlots = s.FrameSlots()
		d.Spills = s.Spills()
	}
	return d
}

// Program returns the source the routine was compiled from
func (r *Routine) Program() string {
	return r.program
}

func (r *Routine) String() string {
	size := 0
	if r.code != nil {
		size = r.code.Size()
	}
	return fmt.Sprintf("%q: consumed=%d returned=%d (%s, size %d)", r.program, r.Consumed, r.Returned, r.backend, size)
}

// Call runs the routine against the stack whose top value is at top.
//
// The caller must provide valid memory from top-(Consumed-1)*ElementSize to
// top+(Returned-Consumed)*ElementSize, holding the values to consume. After
// the call the stack's length is old-Consumed+Returned. Call verifies that
// the compiled code matches the routine's counters but cannot check the
// memory itself; Apply does. Once the Jit that compiled the routine is
// closed, Call returns ErrClosed.
func (r *Routine) Call(top unsafe.Pointer) error {
	if err := r.check(); err != nil {
		return err
	}
	if top == nil && (r.footprint.Loads > 0 || r.footprint.Stores > 0) {
		return fmt.Errorf("%w: nil stack for %q", ErrSignatureMismatch, r.program)
	}
	if err := r.code.Call(top); err != nil {
		if errors.Is(err, codegen.ErrClosed) {
			return fmt.Errorf("%w: calling %q: %w", ErrClosed, r.program, err)
		}
		return fmt.Errorf("calling %q: %w", r.program, err)
	}
	return nil
}

// check asserts that the routine takes a single pointer and that its loads
// and stores reach exactly the slots its counters describe.
func (r *Routine) check() error {
	if r.code == nil {
		return fmt.Errorf("%w: %q has no code", ErrSignatureMismatch, r.program)
	}
	if !r.sig.Equal(ir.PointerSignature()) {
		return fmt.Errorf("%w: signature %v", ErrSignatureMismatch, r.sig)
	}
	fp := r.footprint
	if r.Consumed > 0 {
		if fp.Loads != r.Consumed || fp.MaxLoad != 0 || fp.MinLoad != int32(-ElementSize*(r.Consumed-1)) {
			return fmt.Errorf("%w: %d loads in [%d, %d] for consumed=%d",
				ErrSignatureMismatch, fp.Loads, fp.MinLoad, fp.MaxLoad, r.Consumed)
		}
	} else if fp.Loads != 0 {
		return fmt.Errorf("%w: %d loads for consumed=0", ErrSignatureMismatch, fp.Loads)
	}
	if r.Returned > 0 {
		if fp.Stores != r.Returned ||
			fp.MinStore != int32(-ElementSize*(r.Consumed-1)) ||
			fp.MaxStore != int32(ElementSize*(r.Returned-r.Consumed)) {
			return fmt.Errorf("%w: %d stores in [%d, %d] for consumed=%d returned=%d",
				ErrSignatureMismatch, fp.Stores, fp.MinStore, fp.MaxStore, r.Consumed, r.Returned)
		}
	} else if fp.Stores != 0 {
		return fmt.Errorf("%w: %d stores for returned=0", ErrSignatureMismatch, fp.Stores)
	}
	return nil
}

// Apply runs the routine on a copy of stack, its last element being the top,
// and returns the resulting stack.
func (r *Routine) Apply(stack []float64) ([]float64, error) {
	n := len(stack)
	if n < r.Consumed {
		return nil, fmt.Errorf("%w: %q needs %d values, stack has %d", ErrStackUnderflow, r.program, r.Consumed, n)
	}
	newLen := n - r.Consumed + r.Returned

	// buf[0] is a guard slot so that the top pointer of an empty stack is
	// still inside the allocation.
	size := max(n, newLen)
	buf := make([]float64, size+1)
	copy(buf[1:], stack)
	if err := r.Call(unsafe.Pointer(&buf[n])); err != nil {
		return nil, err
	}
	runtime.KeepAlive(buf)
	return buf[1 : 1+newLen : 1+newLen], nil
}
