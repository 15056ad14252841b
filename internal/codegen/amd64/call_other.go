//go:build !amd64

package amd64

import "unsafe"

type funcval struct {
	pc uintptr
}

func callNative(fv *funcval, stack, frame unsafe.Pointer) {
	panic("amd64: native code can only be called on an amd64 host")
}
