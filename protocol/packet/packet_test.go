package packet

import (
	"testing"

	"github.com/google/uuid"

	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

func roundTrip(t *testing.T, reg *protocol.Registry, phase conn.Phase, dir conn.Direction, id int32, p protocol.Packet) protocol.Packet {
	t.Helper()
	encoded, err := reg.Encode(id, p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	r := protocol.NewReader(encoded)
	gotID := r.VarInt()
	if gotID != id {
		t.Fatalf("encoded id = %#x, want %#x", gotID, id)
	}
	decoded, err := reg.Decode(phase, dir, gotID, encoded[len(encoded)-r.Remaining():])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return decoded
}

func TestHandshakeRoundTrip(t *testing.T) {
	reg := NewRegistry()
	got := roundTrip(t, reg, conn.Handshake, conn.Serverbound, 0x00, &Handshake{
		ProtocolVersion: 767,
		ServerAddress:   "play.example.com",
		ServerPort:      25565,
		Next:            NextLogin,
	}).(*Handshake)
	if got.ProtocolVersion != 767 || got.ServerAddress != "play.example.com" || got.ServerPort != 25565 || got.Next != NextLogin {
		t.Fatalf("got %+v", got)
	}
}

func TestStatusPingPongRoundTrip(t *testing.T) {
	reg := NewRegistry()
	got := roundTrip(t, reg, conn.Status, conn.Serverbound, 0x01, &StatusPing{Payload: 123456789}).(*StatusPing)
	if got.Payload != 123456789 {
		t.Fatalf("got %d", got.Payload)
	}
}

func TestLoginSuccessRoundTrip(t *testing.T) {
	reg := NewRegistry()
	id := uuid.New()
	got := roundTrip(t, reg, conn.Login, conn.Clientbound, 0x02, &LoginSuccess{
		UUID:     id,
		Username: "Steve",
		Properties: []LoginProperty{
			{Name: "textures", Value: "abc", Signed: false},
			{Name: "signed", Value: "def", Signature: "sig", Signed: true},
		},
	}).(*LoginSuccess)
	if got.UUID != id || got.Username != "Steve" || len(got.Properties) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Properties[1].Signature != "sig" || !got.Properties[1].Signed {
		t.Fatalf("signed property mismatch: %+v", got.Properties[1])
	}
	if got.Properties[0].Signed {
		t.Fatalf("unsigned property incorrectly marked signed")
	}
}

func TestChunkDeltaUpdateRoundTrip(t *testing.T) {
	reg := NewRegistry()
	got := roundTrip(t, reg, conn.Play, conn.Clientbound, 0x23, &ChunkDeltaUpdate{
		SectionX: 1, SectionY: 2, SectionZ: 3,
		Entries: []int64{1234, 5678},
	}).(*ChunkDeltaUpdate)
	if got.SectionX != 1 || got.SectionY != 2 || got.SectionZ != 3 {
		t.Fatalf("section coords mismatch: %+v", got)
	}
	if len(got.Entries) != 2 || got.Entries[0] != 1234 || got.Entries[1] != 5678 {
		t.Fatalf("entries mismatch: %+v", got.Entries)
	}
}

func TestEntitySpawnRoundTrip(t *testing.T) {
	reg := NewRegistry()
	id := uuid.New()
	got := roundTrip(t, reg, conn.Play, conn.Clientbound, 0x30, &EntitySpawn{
		ID: 7, UUID: id, Kind: 50,
		X: 1.5, Y: 64, Z: -2.25,
		Yaw: 90, Pitch: 0, HeadYaw: 90,
	}).(*EntitySpawn)
	if got.ID != 7 || got.UUID != id || got.Kind != 50 || got.X != 1.5 || got.Z != -2.25 {
		t.Fatalf("got %+v", got)
	}
}

func TestChatAckRoundTrip(t *testing.T) {
	reg := NewRegistry()
	got := roundTrip(t, reg, conn.Play, conn.Serverbound, 0x04, &ChatAck{
		BaseIndex: 3,
		Bitmap:    0b101,
	}).(*ChatAck)
	if got.BaseIndex != 3 || got.Bitmap != 0b101 {
		t.Fatalf("got %+v", got)
	}
}
