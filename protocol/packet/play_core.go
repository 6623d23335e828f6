package packet

import (
	"github.com/google/uuid"

	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// KeepAlive is sent by the server at a fixed interval carrying a random
// nonce; the client must echo it back as KeepAliveAck (§4.9, §5).
type KeepAlive struct{ ID int64 }

func (p *KeepAlive) Encode(w *protocol.Writer) { w.Int64(p.ID) }
func (p *KeepAlive) Decode(r *protocol.Reader) error {
	p.ID = r.Int64()
	return r.Err()
}

// KeepAliveAck is the client's echo of KeepAlive.
type KeepAliveAck struct{ ID int64 }

func (p *KeepAliveAck) Encode(w *protocol.Writer) { w.Int64(p.ID) }
func (p *KeepAliveAck) Decode(r *protocol.Reader) error {
	p.ID = r.Int64()
	return r.Err()
}

// Disconnect closes the connection during Play.
type Disconnect struct{ Reason string }

func (p *Disconnect) Encode(w *protocol.Writer) { w.StringMax(p.Reason, 1<<18) }
func (p *Disconnect) Decode(r *protocol.Reader) error {
	p.Reason = r.StringMax(1 << 18)
	return r.Err()
}

// PlayerPosition is the serverbound movement packet rejected outright while
// a teleport is pending (§4.10).
type PlayerPosition struct {
	X, Y, Z  float64
	OnGround bool
}

func (p *PlayerPosition) Encode(w *protocol.Writer) {
	w.Float64(p.X)
	w.Float64(p.Y)
	w.Float64(p.Z)
	w.Bool(p.OnGround)
}

func (p *PlayerPosition) Decode(r *protocol.Reader) error {
	p.X = r.Float64()
	p.Y = r.Float64()
	p.Z = r.Float64()
	p.OnGround = r.Bool()
	return r.Err()
}

// PlayerPositionLook is the clientbound teleport packet; TeleportID must be
// echoed back in TeleportConfirm (§4.10).
type PlayerPositionLook struct {
	X, Y, Z    float64
	Yaw, Pitch float32
	Flags      int8
	TeleportID int32
}

func (p *PlayerPositionLook) Encode(w *protocol.Writer) {
	w.Float64(p.X)
	w.Float64(p.Y)
	w.Float64(p.Z)
	w.Float32(p.Yaw)
	w.Float32(p.Pitch)
	w.Int8(p.Flags)
	w.VarInt(p.TeleportID)
}

func (p *PlayerPositionLook) Decode(r *protocol.Reader) error {
	p.X = r.Float64()
	p.Y = r.Float64()
	p.Z = r.Float64()
	p.Yaw = r.Float32()
	p.Pitch = r.Float32()
	p.Flags = r.Int8()
	p.TeleportID = r.VarInt()
	return r.Err()
}

// TeleportConfirm is the client's acknowledgement of a server-initiated
// teleport (§4.10).
type TeleportConfirm struct{ TeleportID int32 }

func (p *TeleportConfirm) Encode(w *protocol.Writer) { w.VarInt(p.TeleportID) }
func (p *TeleportConfirm) Decode(r *protocol.Reader) error {
	p.TeleportID = r.VarInt()
	return r.Err()
}

// ChatMessage is a simplified serverbound chat submission.
type ChatMessage struct {
	Message   string
	Timestamp int64
}

func (p *ChatMessage) Encode(w *protocol.Writer) {
	w.StringMax(p.Message, 256)
	w.Int64(p.Timestamp)
}

func (p *ChatMessage) Decode(r *protocol.Reader) error {
	p.Message = r.StringMax(256)
	p.Timestamp = r.Int64()
	return r.Err()
}

// ChatAck carries the acknowledgement validator's (base_index, bitmap) pair
// (§4.10, §3.4).
type ChatAck struct {
	BaseIndex int32
	Bitmap    uint32 // low 20 bits significant
}

func (p *ChatAck) Encode(w *protocol.Writer) {
	w.VarInt(p.BaseIndex)
	w.Int32(int32(p.Bitmap))
}

func (p *ChatAck) Decode(r *protocol.Reader) error {
	p.BaseIndex = r.VarInt()
	p.Bitmap = uint32(r.Int32())
	return r.Err()
}

// PlayerInfoAdd adds an entry to the client's tab list (§4.11).
type PlayerInfoAdd struct {
	UUID     uuid.UUID
	Name     string
	GameMode int32
	Latency  int32
}

func (p *PlayerInfoAdd) Encode(w *protocol.Writer) {
	w.UUID(p.UUID)
	w.StringMax(p.Name, 16)
	w.VarInt(p.GameMode)
	w.VarInt(p.Latency)
}

func (p *PlayerInfoAdd) Decode(r *protocol.Reader) error {
	p.UUID = r.UUID()
	p.Name = r.StringMax(16)
	p.GameMode = r.VarInt()
	p.Latency = r.VarInt()
	return r.Err()
}

// PlayerInfoRemove removes an entry from the tab list.
type PlayerInfoRemove struct {
	UUID uuid.UUID
}

func (p *PlayerInfoRemove) Encode(w *protocol.Writer) { w.UUID(p.UUID) }
func (p *PlayerInfoRemove) Decode(r *protocol.Reader) error {
	p.UUID = r.UUID()
	return r.Err()
}

// RegisterPlayCore adds the connection-level Play packets (keepalive, chat,
// teleport, roster) to reg. Chunk and entity packets register separately
// (play_chunk.go, play_entity.go) so each concern's file stays focused.
func RegisterPlayCore(reg *protocol.Registry) {
	reg.Register(conn.Play, conn.Clientbound, 0x00, func() protocol.Packet { return &KeepAlive{} })
	reg.Register(conn.Play, conn.Serverbound, 0x00, func() protocol.Packet { return &KeepAliveAck{} })
	reg.Register(conn.Play, conn.Clientbound, 0x01, func() protocol.Packet { return &Disconnect{} })
	reg.Register(conn.Play, conn.Serverbound, 0x01, func() protocol.Packet { return &PlayerPosition{} })
	reg.Register(conn.Play, conn.Clientbound, 0x02, func() protocol.Packet { return &PlayerPositionLook{} })
	reg.Register(conn.Play, conn.Serverbound, 0x02, func() protocol.Packet { return &TeleportConfirm{} })
	reg.Register(conn.Play, conn.Serverbound, 0x03, func() protocol.Packet { return &ChatMessage{} })
	reg.Register(conn.Play, conn.Serverbound, 0x04, func() protocol.Packet { return &ChatAck{} })
	reg.Register(conn.Play, conn.Clientbound, 0x05, func() protocol.Packet { return &PlayerInfoAdd{} })
	reg.Register(conn.Play, conn.Clientbound, 0x06, func() protocol.Packet { return &PlayerInfoRemove{} })
}
