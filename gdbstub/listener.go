// listener.go - TCP accept for the GDB remote stub

package gdbstub

import (
	"fmt"
	"net"

	"github.com/intuitionamiga/psxcore/psxlog"
)

// Config holds the ambient configuration the core itself never parses from
// flags or the environment. The host emulator shell is responsible for
// turning its own config into this struct.
type Config struct {
	// ListenAddr is the TCP address to accept the debugger connection on,
	// e.g. "127.0.0.1:9001".
	ListenAddr string
}

// ListenAndAccept opens a TCP listener on cfg.ListenAddr and blocks until a
// single debugger client connects, returning a Session wrapping that
// connection. This is the only place the stub blocks waiting on something
// other than the debugger itself.
func ListenAndAccept(cfg Config) (*Session, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("gdbstub: listen on %s: %w", cfg.ListenAddr, err)
	}
	defer ln.Close()

	psxlog.Tracef("gdbstub: waiting for debugger on %s", cfg.ListenAddr)

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("gdbstub: accept: %w", err)
	}

	psxlog.Tracef("gdbstub: debugger connected from %s", conn.RemoteAddr())

	return NewSession(conn), nil
}
