package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders p's instruction stream as one line per instruction,
// mirroring the teacher's `ASTCompiler.DiassembleBytecode` — opcode name
// plus resolved operand (constants-pool value, jump target, or address).
func Disassemble(p Program) string {
	var b strings.Builder
	ip := 0
	for ip < len(p.Instructions) {
		op := Opcode(p.Instructions[ip])
		def, err := Lookup(op)
		if err != nil {
			fmt.Fprintf(&b, "%04d ERROR: %s\n", ip, err)
			ip++
			continue
		}
		operands, read := ReadOperands(def, p.Instructions[ip+1:])
		fmt.Fprintf(&b, "%04d %-13s", ip, def.Name)
		for i, o := range operands {
			switch op {
			case OpPushConst:
				if o < len(p.Constants) {
					c := p.Constants[o]
					fmt.Fprintf(&b, " %d(=%s)", o, c.Value.String())
				} else {
					fmt.Fprintf(&b, " %d", o)
				}
			case OpAssert:
				if o == noTag {
					b.WriteString(" -")
				} else if o < len(p.Tags) {
					fmt.Fprintf(&b, " tag#%d(=%q)", o, p.Tags[o])
				} else {
					fmt.Fprintf(&b, " tag#%d", o)
				}
			default:
				if i > 0 {
					b.WriteString(",")
				}
				fmt.Fprintf(&b, " %d", o)
			}
		}
		b.WriteString("\n")
		ip += 1 + read
	}
	return b.String()
}
