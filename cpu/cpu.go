// cpu.go - CPU facade consumed by the debug and rendering core

package cpu

// CPU is the minimal surface the rest of this module needs from the
// console's MIPS-like interpreter. The interpreter itself, its pipeline and
// its memory bus are external collaborators and live outside this module;
// everything here is read access plus the two control points a debugger
// needs (forcing the program counter and reading typed memory).
type CPU interface {
	// Reg returns the value of general-purpose register r (0-31).
	Reg(r uint32) uint32

	// SR, LO, HI, BadVAddr, Cause and PC return the control registers in
	// the order the GDB register reply expects them.
	SR() uint32
	LO() uint32
	HI() uint32
	BadVAddr() uint32
	Cause() uint32
	PC() uint32

	// ForcePC sets the program counter directly, used by the GDB "c addr"
	// continue-at-address command.
	ForcePC(addr uint32)

	// Load8, Load16 and Load32 read through the memory bus at the given
	// address. Alignment, side effects and caching are the bus's concern;
	// the GDB stub only ever asks for the width it has decided to use.
	Load8(addr uint32) uint8
	Load16(addr uint32) uint16
	Load32(addr uint32) uint32
}
