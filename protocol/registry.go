package protocol

import (
	"fmt"

	"github.com/emberforge/core/conn"
)

// Packet is implemented by every concrete packet type. Identity (phase,
// direction, id) is carried by the registration, not the type, so the same
// Go struct could in principle be registered under more than one id.
type Packet interface {
	// Encode appends this packet's body (not its id) to w.
	Encode(w *Writer)
	// Decode populates the packet from r, which contains the body only (the
	// id has already been consumed by the registry).
	Decode(r *Reader) error
}

type key struct {
	phase     conn.Phase
	direction conn.Direction
	id        int32
}

// Registry maps (phase, direction, id) triples to packet factories, giving
// encode/decode dispatch (C3). A zero Registry is empty and ready to use.
type Registry struct {
	factories map[key]func() Packet
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[key]func() Packet)}
}

// Register associates (phase, direction, id) with new, which must return a
// fresh zero-value instance of the packet type each time it is called.
// Registering the same triple twice panics: that is always a programming
// error, never a runtime condition.
func (r *Registry) Register(phase conn.Phase, dir conn.Direction, id int32, new func() Packet) {
	k := key{phase, dir, id}
	if _, exists := r.factories[k]; exists {
		panic(fmt.Sprintf("protocol: packet id %#x already registered for %s/%s", id, phase, dir))
	}
	r.factories[k] = new
}

// Encode serialises p into its full framed body: VarInt(id) ∥ body.
func (r *Registry) Encode(id int32, p Packet) ([]byte, error) {
	w := &Writer{}
	w.VarInt(id)
	p.Encode(w)
	if err := w.Err(); err != nil {
		return nil, fmt.Errorf("protocol: encode: %w", err)
	}
	return w.Bytes(), nil
}

// ErrUnknownPacket is returned by Decode when no packet is registered for the
// given (phase, direction, id). Per §4.3 this is non-fatal when the id slot
// is optional for that phase; callers that require the slot to be filled
// should treat it as fatal.
type ErrUnknownPacket struct {
	Phase     conn.Phase
	Direction conn.Direction
	ID        int32
}

func (e *ErrUnknownPacket) Error() string {
	return fmt.Sprintf("protocol: unknown packet id %#x for %s/%s", e.ID, e.Phase, e.Direction)
}

// Decode looks up the packet registered for (phase, direction, id), decodes
// body into it, and returns the typed packet.
func (r *Registry) Decode(phase conn.Phase, dir conn.Direction, id int32, body []byte) (Packet, error) {
	new, ok := r.factories[key{phase, dir, id}]
	if !ok {
		return nil, &ErrUnknownPacket{Phase: phase, Direction: dir, ID: id}
	}
	p := new()
	rd := NewReader(body)
	if err := p.Decode(rd); err != nil {
		return nil, fmt.Errorf("protocol: decode %T: %w", p, err)
	}
	if err := rd.Err(); err != nil {
		return nil, fmt.Errorf("protocol: decode %T: %w", p, err)
	}
	return p, nil
}
