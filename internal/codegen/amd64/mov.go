package amd64

import "math"

// MovImmToReg loads a 64-bit immediate: movabs r64, imm64
func (o *Out) MovImmToReg(dst string, imm uint64) {
	r := mustGP(dst)
	o.begin("mov %s, 0x%x", dst, imm)

	o.rex(true, 0, r.Encoding)
	o.Write(0xB8 + (r.Encoding & 7))
	o.Write8u(imm)

	o.end()
}

// MovRegToXmm moves a general purpose register into an XMM register:
// movq xmm, r64
func (o *Out) MovRegToXmm(dst, src string) {
	x := mustXMM(dst)
	r := mustGP(src)
	o.begin("movq %s, %s", dst, src)

	o.Write(0x66)
	o.rex(true, x.Encoding, r.Encoding)
	o.Write(0x0F)
	o.Write(0x6E)
	o.Write(0xC0 | ((x.Encoding & 7) << 3) | (r.Encoding & 7))

	o.end()
}

// MovXmmToXmm copies a scalar double: movsd xmm1, xmm2
func (o *Out) MovXmmToXmm(dst, src string) {
	d := mustXMM(dst)
	s := mustXMM(src)
	o.begin("movsd %s, %s", dst, src)

	o.Write(0xF2)
	o.rex(false, d.Encoding, s.Encoding)
	o.Write(0x0F)
	o.Write(0x10)
	o.Write(0xC0 | ((d.Encoding & 7) << 3) | (s.Encoding & 7))

	o.end()
}

// MovConstToXmm materializes a float64 constant in xmm through the scratch
// general purpose register.
func (o *Out) MovConstToXmm(xmm, scratch string, x float64) {
	o.MovImmToReg(scratch, math.Float64bits(x))
	o.MovRegToXmm(xmm, scratch)
}
