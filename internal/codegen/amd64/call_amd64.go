//go:build amd64

package amd64

import "unsafe"

// funcval has the layout of a Go func value: a pointer to a block whose first
// word is the entry address.
type funcval struct {
	pc uintptr
}

// callNative calls lowered code through a Go func value, so the arguments
// travel in rax and rbx under the register ABI.
func callNative(fv *funcval, stack, frame unsafe.Pointer) {
	fn := *(*func(stack, frame unsafe.Pointer))(unsafe.Pointer(&fv))
	fn(stack, frame)
}
