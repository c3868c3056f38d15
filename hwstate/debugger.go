// debugger.go - Debugger collaborator contract

package hwstate

import "github.com/intuitionamiga/psxcore/cpu"

// Debugger is the hook the CPU interpreter calls into on every instruction
// and every memory access, and the hook the GDB stub calls into to hand
// control back to the emulated machine. It exists so the interpreter's hot
// path never has to branch on "is a debugger attached" — callers either
// wire in InertDebugger (compiled away to nothing of consequence) or a real
// implementation such as the one driving gdbstub.Session.
type Debugger interface {
	// TriggerBreak requests that the CPU halt before its next instruction.
	TriggerBreak()

	// PCChange is called before every instruction with the CPU about to
	// execute it. Must be cheap: this runs once per instruction.
	PCChange(c cpu.CPU)

	// MemoryRead and MemoryWrite are called before every load and store
	// the CPU performs, with the address being accessed.
	MemoryRead(c cpu.CPU, addr uint32)
	MemoryWrite(c cpu.CPU, addr uint32)

	// Resume hands control back to the emulated machine. Called by the GDB
	// stub's "c" command once any requested PC override has been applied.
	Resume()
}

// InertDebugger is the no-op Debugger used when no remote debugger is
// attached. Every method is empty so the compiler can inline it away at
// call sites; it carries no state.
type InertDebugger struct{}

func (InertDebugger) TriggerBreak()               {}
func (InertDebugger) PCChange(cpu.CPU)            {}
func (InertDebugger) MemoryRead(cpu.CPU, uint32)  {}
func (InertDebugger) MemoryWrite(cpu.CPU, uint32) {}
func (InertDebugger) Resume()                     {}

var _ Debugger = InertDebugger{}
