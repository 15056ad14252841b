// Package codegen defines the contract between the stack compiler and the
// backends that turn an ir.Func into callable code.
package codegen

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/xyproto/stackjit/internal/ir"
)

var (
	ErrUnsupportedSignature = errors.New("unsupported signature")
	ErrUnknownFunc          = errors.New("unknown function")
	ErrNotFinalized         = errors.New("function not finalized")
	ErrAlreadyDefined       = errors.New("function already defined")
	ErrClosed               = errors.New("module closed")
	ErrUnknownBackend       = errors.New("unknown backend")
)

// FuncID identifies a function declared in a Module
type FuncID uint32

// Code is a finalized routine.
type Code interface {
	// Call runs the routine with stack as its only argument. The memory
	// reachable at the routine's offsets from stack must be valid. Call
	// returns ErrClosed once the owning module is closed, and must not run
	// concurrently with Close.
	Call(stack unsafe.Pointer) error

	// Size returns the size of the routine's code in bytes
	Size() int
}

// Spiller is implemented by code that keeps some values in a spill frame
type Spiller interface {
	FrameSlots() int // 8-byte slots allocated for each call
	Spills() int     // spill stores in the code
}

// Module owns compiled routines. A Module is not safe for concurrent use.
type Module interface {
	Name() string

	// DeclareAnonymousFunction reserves an unnamed function with the given
	// signature.
	DeclareAnonymousFunction(sig ir.Signature) (FuncID, error)

	// DefineFunction gives the body of a declared function. The module must
	// not retain fn: callers reset and reuse it right after.
	DefineFunction(id FuncID, fn *ir.Func) error

	// FinalizeDefinitions makes every defined function callable
	FinalizeDefinitions() error

	// FinalizedFunction returns the code of a finalized function. It stays
	// valid until Close.
	FinalizedFunction(id FuncID) (Code, error)

	// Close releases every routine of the module
	Close() error
}

// CheckSignature reports whether sig is the pointer signature every backend
// lowers: one i64 parameter and no returns.
func CheckSignature(sig ir.Signature) error {
	if !sig.Equal(ir.PointerSignature()) {
		return fmt.Errorf("%w: %v (want %v)", ErrUnsupportedSignature, sig, ir.PointerSignature())
	}
	return nil
}

// Declarations tracks the declared/defined/finalized state of functions for
// backend implementations.
type Declarations[T any] struct {
	entries []declaration[T]
}

type declaration[T any] struct {
	sig       ir.Signature
	defined   bool
	finalized bool
	body      T
}

// Declare records a new function
func (d *Declarations[T]) Declare(sig ir.Signature) (FuncID, error) {
	if err := CheckSignature(sig); err != nil {
		return 0, err
	}
	d.entries = append(d.entries, declaration[T]{sig: sig})
	return FuncID(len(d.entries) - 1), nil
}

// Define checks fn against the declaration of id and stores body for it
func (d *Declarations[T]) Define(id FuncID, fn *ir.Func, body func(*ir.Func) (T, error)) error {
	if int(id) >= len(d.entries) {
		return fmt.Errorf("%w: %d", ErrUnknownFunc, id)
	}
	e := &d.entries[id]
	if e.defined {
		return fmt.Errorf("%w: %d", ErrAlreadyDefined, id)
	}
	if !fn.Sig.Equal(e.sig) {
		return fmt.Errorf("%w: body has %v, declared %v", ErrUnsupportedSignature, fn.Sig, e.sig)
	}
	if err := fn.Verify(); err != nil {
		return err
	}
	b, err := body(fn)
	if err != nil {
		return err
	}
	e.body = b
	e.defined = true
	return nil
}

// Pending calls f for every defined but not yet finalized function, marking
// each finalized when f succeeds.
func (d *Declarations[T]) Pending(f func(id FuncID, body *T) error) error {
	for i := range d.entries {
		e := &d.entries[i]
		if !e.defined || e.finalized {
			continue
		}
		if err := f(FuncID(i), &e.body); err != nil {
			return err
		}
		e.finalized = true
	}
	return nil
}

// Finalized returns the body of a finalized function
func (d *Declarations[T]) Finalized(id FuncID) (T, error) {
	var zero T
	if int(id) >= len(d.entries) {
		return zero, fmt.Errorf("%w: %d", ErrUnknownFunc, id)
	}
	e := &d.entries[id]
	if !e.finalized {
		return zero, fmt.Errorf("%w: %d", ErrNotFinalized, id)
	}
	return e.body, nil
}

// Each calls f for every defined function
func (d *Declarations[T]) Each(f func(body *T)) {
	for i := range d.entries {
		if d.entries[i].defined {
			f(&d.entries[i].body)
		}
	}
}

// Reset forgets every declaration
func (d *Declarations[T]) Reset() {
	d.entries = d.entries[:0]
}
