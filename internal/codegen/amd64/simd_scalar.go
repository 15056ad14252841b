package amd64

// Scalar double-precision arithmetic on the low lane of XMM registers.
// Every operation computes dst = dst OP src.

const (
	opAddsd uint8 = 0x58
	opMulsd uint8 = 0x59
	opSubsd uint8 = 0x5C
	opDivsd uint8 = 0x5E
)

var scalarMnemonics = map[uint8]string{
	opAddsd: "addsd",
	opMulsd: "mulsd",
	opSubsd: "subsd",
	opDivsd: "divsd",
}

func (o *Out) AddsdXmm(dst, src string) { o.scalarXmm(opAddsd, dst, src) }
func (o *Out) SubsdXmm(dst, src string) { o.scalarXmm(opSubsd, dst, src) }
func (o *Out) MulsdXmm(dst, src string) { o.scalarXmm(opMulsd, dst, src) }
func (o *Out) DivsdXmm(dst, src string) { o.scalarXmm(opDivsd, dst, src) }

func (o *Out) AddsdMem(dst, base string, offset int32) { o.scalarMem(opAddsd, dst, base, offset) }
func (o *Out) SubsdMem(dst, base string, offset int32) { o.scalarMem(opSubsd, dst, base, offset) }
func (o *Out) MulsdMem(dst, base string, offset int32) { o.scalarMem(opMulsd, dst, base, offset) }
func (o *Out) DivsdMem(dst, base string, offset int32) { o.scalarMem(opDivsd, dst, base, offset) }

func (o *Out) scalarXmm(op uint8, dst, src string) {
	d := mustXMM(dst)
	s := mustXMM(src)
	o.begin("%s %s, %s", scalarMnemonics[op], dst, src)

	o.Write(0xF2)
	o.rex(false, d.Encoding, s.Encoding)
	o.Write(0x0F)
	o.Write(op)
	o.Write(0xC0 | ((d.Encoding & 7) << 3) | (s.Encoding & 7))

	o.end()
}

func (o *Out) scalarMem(op uint8, dst, base string, offset int32) {
	d := mustXMM(dst)
	b := mustGP(base)
	o.begin("%s %s, [%s%+d]", scalarMnemonics[op], dst, base, offset)

	o.Write(0xF2)
	o.rex(false, d.Encoding, b.Encoding)
	o.Write(0x0F)
	o.Write(op)
	o.memOperand(d.Encoding, b, offset)

	o.end()
}
