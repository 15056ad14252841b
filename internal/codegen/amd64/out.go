// Package amd64 lowers IR functions to x86-64 machine code and loads them
// into executable memory.
package amd64

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Out encodes instructions into a code buffer. When a trace writer is set,
// every instruction is printed as its mnemonic followed by its bytes.
type Out struct {
	buf   bytes.Buffer
	trace io.Writer
}

// NewOut creates an encoder; trace may be nil
func NewOut(trace io.Writer) *Out {
	return &Out{trace: trace}
}

// Bytes returns the encoded code
func (o *Out) Bytes() []byte {
	return o.buf.Bytes()
}

// Len returns the number of bytes encoded so far
func (o *Out) Len() int {
	return o.buf.Len()
}

// Reset clears the buffer for the next function
func (o *Out) Reset() {
	o.buf.Reset()
}

func (o *Out) Write(b uint8) {
	o.buf.WriteByte(b)
	if o.trace != nil {
		fmt.Fprintf(o.trace, " %02x", b)
	}
}

// WriteUnsigned writes a 32-bit little-endian value
func (o *Out) WriteUnsigned(i uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], i)
	for _, c := range b {
		o.Write(c)
	}
}

// Write8u writes a 64-bit little-endian value
func (o *Out) Write8u(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	for _, c := range b {
		o.Write(c)
	}
}

func (o *Out) begin(format string, args ...interface{}) {
	if o.trace != nil {
		fmt.Fprintf(o.trace, format+":", args...)
	}
}

func (o *Out) end() {
	if o.trace != nil {
		fmt.Fprintln(o.trace)
	}
}

// rex writes a REX prefix when any of its bits are needed
func (o *Out) rex(w bool, reg, rm uint8) {
	rex := uint8(0x40)
	if w {
		rex |= 0x08 // REX.W
	}
	if reg >= 8 {
		rex |= 0x04 // REX.R
	}
	if rm >= 8 {
		rex |= 0x01 // REX.B
	}
	if rex != 0x40 {
		o.Write(rex)
	}
}

// memOperand writes ModR/M (plus SIB and displacement) for [base + offset]
func (o *Out) memOperand(reg uint8, base Register, offset int32) {
	switch {
	case offset == 0 && (base.Encoding&7) != 5: // rbp/r13 need a displacement
		o.Write(0x00 | ((reg & 7) << 3) | (base.Encoding & 7))
		if (base.Encoding & 7) == 4 { // rsp/r12 need SIB
			o.Write(0x24)
		}
	case offset >= -128 && offset <= 127:
		o.Write(0x40 | ((reg & 7) << 3) | (base.Encoding & 7))
		if (base.Encoding & 7) == 4 {
			o.Write(0x24)
		}
		o.Write(uint8(int8(offset)))
	default:
		o.Write(0x80 | ((reg & 7) << 3) | (base.Encoding & 7))
		if (base.Encoding & 7) == 4 {
			o.Write(0x24)
		}
		o.WriteUnsigned(uint32(offset))
	}
}
