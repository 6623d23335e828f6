// Package packet defines the concrete packet types exchanged at each phase
// and wires them into a protocol.Registry (C3).
package packet

import (
	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// NextState is the value carried by a Handshake packet indicating which
// phase the client intends to move to.
type NextState int32

const (
	NextStatus NextState = 1
	NextLogin  NextState = 2
)

// Handshake is the single serverbound packet of the Handshake phase. It
// carries the protocol version the client is using and the address it
// connected to (useful for virtual-host routing), and selects the next
// phase (§4.4).
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	Next            NextState
}

func (p *Handshake) Encode(w *protocol.Writer) {
	w.VarInt(p.ProtocolVersion)
	w.String(p.ServerAddress)
	w.Uint16(p.ServerPort)
	w.VarInt(int32(p.Next))
}

func (p *Handshake) Decode(r *protocol.Reader) error {
	p.ProtocolVersion = r.VarInt()
	p.ServerAddress = r.StringMax(255)
	p.ServerPort = r.Uint16()
	p.Next = NextState(r.VarInt())
	return r.Err()
}

// RegisterHandshake adds the Handshake packet to reg.
func RegisterHandshake(reg *protocol.Registry) {
	reg.Register(conn.Handshake, conn.Serverbound, 0x00, func() protocol.Packet { return &Handshake{} })
}
