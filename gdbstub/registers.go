// registers.go - "g" command register marshaling

package gdbstub

import "github.com/intuitionamiga/psxcore/cpu"

// unavailableRegisters is the count of GDB's MIPS register set the
// PlayStation target has no analogue for (floating point and other
// helpers). GDB expects 73 registers total; we have 38.
const unavailableRegisters = 35

// ReadRegisters builds the reply to the "g" command: the 32 general
// purpose registers, then SR, LO, HI, BadVAddr, Cause and PC (38 values,
// little-endian hex), followed by 35 "xxxxxxxx" placeholders.
func ReadRegisters(c cpu.CPU) *Reply {
	reply := NewReply()

	for r := uint32(0); r < 32; r++ {
		reply.PushU32(c.Reg(r))
	}

	for _, v := range [...]uint32{c.SR(), c.LO(), c.HI(), c.BadVAddr(), c.Cause(), c.PC()} {
		reply.PushU32(v)
	}

	for i := 0; i < unavailableRegisters; i++ {
		reply.Push([]byte("xxxxxxxx"))
	}

	return reply
}
