// session.go - GDB stub request/response loop and command dispatch

package gdbstub

import (
	"errors"
	"io"

	"github.com/intuitionamiga/psxcore/cpu"
	"github.com/intuitionamiga/psxcore/hwstate"
)

// ErrSessionEnded is returned by Serve when the underlying connection
// closed or errored; the caller should tear the session down.
var ErrSessionEnded = errors.New("gdbstub: session ended")

// Session serves one GDB remote connection. It borrows the CPU and
// Debugger collaborators for the duration of each Serve call rather than
// owning them: CPU stepping is always paused while a session is being
// served, so there is nothing to synchronize against.
type Session struct {
	conn   io.ReadWriter
	framer *Framer
}

// NewSession wraps an already-accepted connection. Accepting the
// connection itself is the caller's concern (see ListenAndAccept).
func NewSession(conn io.ReadWriter) *Session {
	return &Session{conn: conn, framer: NewFramer(conn)}
}

// Serve consumes exactly one request/response exchange: pull a packet,
// ack or nack it, and on a good packet dispatch the command it carries.
func (s *Session) Serve(c cpu.CPU, debugger hwstate.Debugger) error {
	result := s.framer.NextPacket()

	switch result.Outcome {
	case Ok:
		if err := s.write([]byte{'+'}); err != nil {
			return err
		}
		return s.dispatch(c, debugger, result.Payload)

	case BadChecksum:
		return s.write([]byte{'-'})

	default:
		return ErrSessionEnded
	}
}

func (s *Session) write(b []byte) error {
	_, err := s.conn.Write(b)
	return err
}

func (s *Session) send(reply *Reply) error {
	return s.write(reply.IntoPacket())
}

func (s *Session) sendEmpty() error {
	return s.send(NewReply())
}

func (s *Session) sendError() error {
	reply := NewReply()
	reply.Push([]byte("E00"))
	return s.send(reply)
}

func (s *Session) dispatch(c cpu.CPU, debugger hwstate.Debugger, packet []byte) error {
	if len(packet) == 0 {
		return s.sendEmpty()
	}

	command, args := packet[0], packet[1:]

	switch command {
	case '?':
		return s.sendHaltReason()
	case 'g':
		return s.send(ReadRegisters(c))
	case 'm':
		return s.handleReadMemory(c, args)
	case 'c':
		return s.handleResume(c, debugger, args)
	default:
		return s.sendEmpty()
	}
}

func (s *Session) sendHaltReason() error {
	reply := NewReply()
	reply.Push([]byte("S00"))
	return s.send(reply)
}

func (s *Session) handleReadMemory(c cpu.CPU, args []byte) error {
	addr, length, err := ParseAddrLen(args)
	if err != nil {
		return s.sendError()
	}
	if length == 0 {
		return s.sendError()
	}
	return s.send(ReadMemory(c, addr, length))
}

// handleResume implements the "c[addr]" command: with an argument, force
// the PC before resuming; the stub never steps the CPU itself, it only
// signals the Debugger collaborator to hand control back.
func (s *Session) handleResume(c cpu.CPU, debugger hwstate.Debugger, args []byte) error {
	if len(args) > 0 {
		addr, err := ParseHex(args)
		if err != nil {
			return s.sendError()
		}
		c.ForcePC(addr)
	}

	debugger.Resume()
	return nil
}
