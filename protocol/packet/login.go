package packet

import (
	"github.com/google/uuid"

	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// LoginHello is the first serverbound packet of the Login phase (§4.4).
type LoginHello struct {
	Username string
	UUID     uuid.UUID
}

func (p *LoginHello) Encode(w *protocol.Writer) {
	w.StringMax(p.Username, 16)
	w.UUID(p.UUID)
}

func (p *LoginHello) Decode(r *protocol.Reader) error {
	p.Username = r.StringMax(16)
	p.UUID = r.UUID()
	return r.Err()
}

// EncryptionRequest begins the online-mode key exchange. VerifyToken is
// echoed back by the client to prove it holds the public key; the core
// treats PublicKey as an opaque DER blob (RSA key material generation is
// outside the scope of this package, §1).
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
}

func (p *EncryptionRequest) Encode(w *protocol.Writer) {
	w.StringMax(p.ServerID, 20)
	w.ByteArray(p.PublicKey)
	w.ByteArray(p.VerifyToken)
}

func (p *EncryptionRequest) Decode(r *protocol.Reader) error {
	p.ServerID = r.StringMax(20)
	p.PublicKey = r.ByteArray()
	p.VerifyToken = r.ByteArray()
	return r.Err()
}

// EncryptionResponse carries the RSA-encrypted shared secret and echoed
// verify token. Decryption of SharedSecret/VerifyToken with the server's RSA
// private key is performed by the external authentication collaborator
// (§6.4), not by this package.
type EncryptionResponse struct {
	SharedSecret []byte
	VerifyToken  []byte
}

func (p *EncryptionResponse) Encode(w *protocol.Writer) {
	w.ByteArray(p.SharedSecret)
	w.ByteArray(p.VerifyToken)
}

func (p *EncryptionResponse) Decode(r *protocol.Reader) error {
	p.SharedSecret = r.ByteArray()
	p.VerifyToken = r.ByteArray()
	return r.Err()
}

// LoginCompression enables frame compression at Threshold bytes (§4.2);
// sent only when the server's configured threshold is >= 0.
type LoginCompression struct {
	Threshold int32
}

func (p *LoginCompression) Encode(w *protocol.Writer) { w.VarInt(p.Threshold) }
func (p *LoginCompression) Decode(r *protocol.Reader) error {
	p.Threshold = r.VarInt()
	return r.Err()
}

// LoginProperty is a single signed profile property (e.g. "textures").
type LoginProperty struct {
	Name, Value string
	Signature   string
	Signed      bool
}

// LoginSuccess completes the Login phase; the client transitions to
// Configuration upon receiving it (§4.4).
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []LoginProperty
}

func (p *LoginSuccess) Encode(w *protocol.Writer) {
	w.UUID(p.UUID)
	w.StringMax(p.Username, 16)
	w.VarInt(int32(len(p.Properties)))
	for _, prop := range p.Properties {
		w.String(prop.Name)
		w.String(prop.Value)
		protocol.Optional(w, prop.Signed, func(w *protocol.Writer) {
			w.String(prop.Signature)
		})
	}
}

func (p *LoginSuccess) Decode(r *protocol.Reader) error {
	p.UUID = r.UUID()
	p.Username = r.StringMax(16)
	n := r.VarInt()
	p.Properties = make([]LoginProperty, 0, max32(n, 0))
	for i := int32(0); i < n && r.Err() == nil; i++ {
		var prop LoginProperty
		prop.Name = r.String()
		prop.Value = r.String()
		prop.Signature, prop.Signed = protocol.OptionalRead(r, (*protocol.Reader).String)
		p.Properties = append(p.Properties, prop)
	}
	return r.Err()
}

func max32(n, floor int32) int32 {
	if n < floor {
		return floor
	}
	return n
}

// LoginDisconnect closes the connection during the Login phase with a
// reason. Reason is treated as opaque text-component JSON (§1).
type LoginDisconnect struct {
	Reason string
}

func (p *LoginDisconnect) Encode(w *protocol.Writer) { w.StringMax(p.Reason, 1<<18) }
func (p *LoginDisconnect) Decode(r *protocol.Reader) error {
	p.Reason = r.StringMax(1 << 18)
	return r.Err()
}

// RegisterLogin adds the Login-phase packets to reg.
func RegisterLogin(reg *protocol.Registry) {
	reg.Register(conn.Login, conn.Serverbound, 0x00, func() protocol.Packet { return &LoginHello{} })
	reg.Register(conn.Login, conn.Clientbound, 0x00, func() protocol.Packet { return &LoginDisconnect{} })
	reg.Register(conn.Login, conn.Clientbound, 0x01, func() protocol.Packet { return &EncryptionRequest{} })
	reg.Register(conn.Login, conn.Serverbound, 0x01, func() protocol.Packet { return &EncryptionResponse{} })
	reg.Register(conn.Login, conn.Clientbound, 0x02, func() protocol.Packet { return &LoginSuccess{} })
	reg.Register(conn.Login, conn.Clientbound, 0x03, func() protocol.Packet { return &LoginCompression{} })
}
