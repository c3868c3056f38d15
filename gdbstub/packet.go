// packet.go - RSP packet framer state machine

package gdbstub

import (
	"bufio"
	"io"
)

// Outcome tags the result of pulling one packet off the wire.
type Outcome int

const (
	// Ok means Payload holds a checksum-verified packet body.
	Ok Outcome = iota
	// BadChecksum means Payload holds the body collected so far but the
	// checksum didn't match (or wasn't valid hex); the caller should nack.
	BadChecksum
	// EndOfStream means the connection closed or errored before a
	// complete packet arrived.
	EndOfStream
)

// PacketResult is the tagged variant produced by one Framer.NextPacket call.
type PacketResult struct {
	Outcome Outcome
	Payload []byte
}

type framerState int

const (
	stateWaitForStart framerState = iota
	stateInPacket
	stateChecksumHi
	stateChecksumLo
)

// Framer pulls one RSP packet at a time off a byte stream: `$` starts a
// packet, `#` ends it, followed by two lowercase hex checksum digits. Bytes
// seen before the first `$` are silently discarded.
type Framer struct {
	r *bufio.Reader
}

// NewFramer wraps r for packet-at-a-time reading.
func NewFramer(r io.Reader) *Framer {
	return &Framer{r: bufio.NewReader(r)}
}

// NextPacket consumes bytes until it has a complete packet, a checksum
// failure, or the stream ends.
func (f *Framer) NextPacket() PacketResult {
	state := stateWaitForStart

	var payload []byte
	var csum byte
	var hi byte

	for {
		b, err := f.r.ReadByte()
		if err != nil {
			return PacketResult{Outcome: EndOfStream}
		}

		switch state {
		case stateWaitForStart:
			if b == '$' {
				payload = nil
				csum = 0
				state = stateInPacket
			}

		case stateInPacket:
			if b == '#' {
				state = stateChecksumHi
			} else {
				payload = append(payload, b)
				csum += b // mod-256 sum via byte wraparound
			}

		case stateChecksumHi:
			n, ok := hexNibble(b)
			if !ok {
				return PacketResult{Outcome: BadChecksum, Payload: payload}
			}
			hi = n
			state = stateChecksumLo

		case stateChecksumLo:
			lo, ok := hexNibble(b)
			if !ok {
				return PacketResult{Outcome: BadChecksum, Payload: payload}
			}
			expected := hi<<4 | lo
			if expected != csum {
				return PacketResult{Outcome: BadChecksum, Payload: payload}
			}
			return PacketResult{Outcome: Ok, Payload: payload}
		}
	}
}
