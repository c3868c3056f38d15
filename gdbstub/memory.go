// memory.go - alignment-aware "m addr,len" memory read

package gdbstub

import "github.com/intuitionamiga/psxcore/cpu"

// ReadMemory builds the reply to "m addr,len". The emulated bus prefers
// word-aligned 32-bit accesses, so the read is shaped into an unaligned
// prefix, a run of word loads, and an unaligned suffix, each hex-encoded in
// memory order.
//
// Deviation from the reference this is modeled on: after consuming the
// prefix bytes, the remaining length must be decremented by the bytes
// already sent (len -= sent). The implementation this was ported from
// computed `len + sent` at that point, which over-reads past the end of
// the requested range on any unaligned request with align 1, 2, or 3. That
// is a bug, not an intentional design choice, so this port subtracts and
// documents the change rather than reproducing it.
func ReadMemory(c cpu.CPU, addr, length uint32) *Reply {
	reply := NewReply()

	align := addr % 4
	var sent uint32

	switch align {
	case 1, 3:
		count := length
		if rem := 4 - align; rem < count {
			count = rem
		}
		for i := uint32(0); i < count; i++ {
			reply.PushU8(c.Load8(addr + i))
		}
		sent = count

	case 2:
		switch {
		case length >= 2:
			reply.PushU16(c.Load16(addr))
			sent = 2
		case length == 1:
			reply.PushU8(c.Load8(addr))
			sent = 1
		}

	default:
		sent = 0
	}

	addr += sent
	length -= sent

	nwords := length / 4
	for i := uint32(0); i < nwords; i++ {
		reply.PushU32(c.Load32(addr + i*4))
	}

	addr += nwords * 4
	rem := length - nwords*4

	switch rem {
	case 1, 3:
		for i := uint32(0); i < rem; i++ {
			reply.PushU8(c.Load8(addr + i))
		}
	case 2:
		reply.PushU16(c.Load16(addr))
	}

	return reply
}
