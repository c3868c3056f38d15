package gdbstub

// stubCPU is the deterministic CPU double used throughout this package's
// tests: loads simply truncate the address, giving predictable memory
// contents to assert against.
type stubCPU struct {
	regs     [32]uint32
	sr, lo, hi, bad, cause, pc uint32
	forcedPC uint32
	forced   bool
}

func (c *stubCPU) Reg(r uint32) uint32  { return c.regs[r] }
func (c *stubCPU) SR() uint32           { return c.sr }
func (c *stubCPU) LO() uint32           { return c.lo }
func (c *stubCPU) HI() uint32           { return c.hi }
func (c *stubCPU) BadVAddr() uint32     { return c.bad }
func (c *stubCPU) Cause() uint32        { return c.cause }
func (c *stubCPU) PC() uint32           { return c.pc }
func (c *stubCPU) ForcePC(addr uint32)  { c.forcedPC = addr; c.forced = true }

func (c *stubCPU) Load8(addr uint32) uint8   { return uint8(addr & 0xff) }
func (c *stubCPU) Load16(addr uint32) uint16 { return uint16(addr & 0xffff) }
func (c *stubCPU) Load32(addr uint32) uint32 { return addr }
