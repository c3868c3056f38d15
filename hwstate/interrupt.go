// interrupt.go - Interrupt controller state

package hwstate

// Interrupt identifies one of the console's interrupt sources. Only VBlank
// is needed by the rendering core; the rest of the interrupt table belongs
// to the peripherals that raise them and is out of scope here.
type Interrupt uint

const (
	IRQVBlank Interrupt = 0
)

// InterruptState tracks pending and masked interrupts. It is plain data
// with no locking: CPU stepping and GPU command execution are never
// interleaved with another writer, so the owning goroutine is always the
// sole mutator and a mutex would protect against a race that cannot occur.
type InterruptState struct {
	status uint16
	mask   uint16
}

// Active reports whether any unmasked interrupt is pending.
func (s InterruptState) Active() bool {
	return s.status&s.mask != 0
}

func (s InterruptState) Status() uint16 { return s.status }
func (s InterruptState) Mask() uint16   { return s.mask }

// SetMask replaces the interrupt mask.
func (s *InterruptState) SetMask(mask uint16) { s.mask = mask }

// Raise sets the status bit for the given interrupt.
func (s *InterruptState) Raise(which Interrupt) {
	s.status |= 1 << uint(which)
}

// Acknowledge clears status bits by ANDing with the writer's value, per the
// console convention of acknowledging an interrupt by writing 0 to its bit.
func (s *InterruptState) Acknowledge(ack uint16) {
	s.status &= ack
}
