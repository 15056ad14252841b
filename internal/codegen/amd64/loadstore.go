package amd64

// MovMemToXmm loads a scalar double: movsd xmm, [base + offset]
func (o *Out) MovMemToXmm(xmm, base string, offset int32) {
	x := mustXMM(xmm)
	b := mustGP(base)
	o.begin("movsd %s, [%s%+d]", xmm, base, offset)

	o.Write(0xF2) // scalar double prefix, before REX
	o.rex(false, x.Encoding, b.Encoding)
	o.Write(0x0F)
	o.Write(0x10)
	o.memOperand(x.Encoding, b, offset)

	o.end()
}

// MovXmmToMem stores a scalar double: movsd [base + offset], xmm
func (o *Out) MovXmmToMem(xmm, base string, offset int32) {
	x := mustXMM(xmm)
	b := mustGP(base)
	o.begin("movsd [%s%+d], %s", base, offset, xmm)

	o.Write(0xF2)
	o.rex(false, x.Encoding, b.Encoding)
	o.Write(0x0F)
	o.Write(0x11)
	o.memOperand(x.Encoding, b, offset)

	o.end()
}
