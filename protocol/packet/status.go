package packet

import (
	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// StatusRequest asks the server for its status JSON (§4.4).
type StatusRequest struct{}

func (p *StatusRequest) Encode(*protocol.Writer) {}
func (p *StatusRequest) Decode(*protocol.Reader) error { return nil }

// StatusResponse carries the server status document as raw JSON. The core
// does not parse or build this JSON itself; formatting it is left to the
// caller (§1, text component JSON is an external collaborator).
type StatusResponse struct {
	JSON string
}

func (p *StatusResponse) Encode(w *protocol.Writer) { w.StringMax(p.JSON, 1<<20) }
func (p *StatusResponse) Decode(r *protocol.Reader) error {
	p.JSON = r.StringMax(1 << 20)
	return r.Err()
}

// StatusPing carries an opaque payload the server must echo back unchanged.
type StatusPing struct {
	Payload int64
}

func (p *StatusPing) Encode(w *protocol.Writer) { w.Int64(p.Payload) }
func (p *StatusPing) Decode(r *protocol.Reader) error {
	p.Payload = r.Int64()
	return r.Err()
}

// StatusPong is the echoed reply to StatusPing.
type StatusPong struct {
	Payload int64
}

func (p *StatusPong) Encode(w *protocol.Writer) { w.Int64(p.Payload) }
func (p *StatusPong) Decode(r *protocol.Reader) error {
	p.Payload = r.Int64()
	return r.Err()
}

// RegisterStatus adds the Status-phase packets to reg.
func RegisterStatus(reg *protocol.Registry) {
	reg.Register(conn.Status, conn.Serverbound, 0x00, func() protocol.Packet { return &StatusRequest{} })
	reg.Register(conn.Status, conn.Clientbound, 0x00, func() protocol.Packet { return &StatusResponse{} })
	reg.Register(conn.Status, conn.Serverbound, 0x01, func() protocol.Packet { return &StatusPing{} })
	reg.Register(conn.Status, conn.Clientbound, 0x01, func() protocol.Packet { return &StatusPong{} })
}
