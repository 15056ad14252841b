package ir

import (
	"fmt"
	"strconv"
	"strings"
)

func (f *Func) String() string {
	var sb strings.Builder
	sb.WriteString("function")
	sb.WriteString(f.Sig.String())
	sb.WriteString(" {\nblock0(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v: %v", p, f.ValueType(p))
	}
	sb.WriteString("):\n")
	for i := range f.Insts {
		sb.WriteString("    ")
		sb.WriteString(f.Insts[i].format(f))
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (in *Inst) format(f *Func) string {
	switch in.Op {
	case OpF64Const:
		return fmt.Sprintf("%v = f64const %s", in.Result, strconv.FormatFloat(in.Imm, 'g', -1, 64))
	case OpLoad:
		return fmt.Sprintf("%v = load.%v %v%+d", in.Result, f.ValueType(in.Result), in.Args[0], in.Offset)
	case OpStore:
		return fmt.Sprintf("store %v, %v%+d", in.Args[0], in.Args[1], in.Offset)
	case OpReturn:
		return "return"
	default:
		return fmt.Sprintf("%v = %v %v, %v", in.Result, in.Op, in.Args[0], in.Args[1])
	}
}
