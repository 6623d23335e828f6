package packet

import (
	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// ConfigurationFinish tells the client the Configuration phase is complete.
type ConfigurationFinish struct{}

func (p *ConfigurationFinish) Encode(*protocol.Writer)       {}
func (p *ConfigurationFinish) Decode(*protocol.Reader) error { return nil }

// ConfigurationFinishAck is the client's acknowledgement; receiving it is
// what transitions the connection to Play (§4.4).
type ConfigurationFinishAck struct{}

func (p *ConfigurationFinishAck) Encode(*protocol.Writer)       {}
func (p *ConfigurationFinishAck) Decode(*protocol.Reader) error { return nil }

// ConfigurationKeepAlive and ConfigurationKeepAliveAck mirror the Play-phase
// keepalive (§4.9, §5) but occur before the player entity exists.
type ConfigurationKeepAlive struct{ ID int64 }

func (p *ConfigurationKeepAlive) Encode(w *protocol.Writer) { w.Int64(p.ID) }
func (p *ConfigurationKeepAlive) Decode(r *protocol.Reader) error {
	p.ID = r.Int64()
	return r.Err()
}

type ConfigurationKeepAliveAck struct{ ID int64 }

func (p *ConfigurationKeepAliveAck) Encode(w *protocol.Writer) { w.Int64(p.ID) }
func (p *ConfigurationKeepAliveAck) Decode(r *protocol.Reader) error {
	p.ID = r.Int64()
	return r.Err()
}

// ConfigurationDisconnect closes the connection during Configuration.
type ConfigurationDisconnect struct{ Reason string }

func (p *ConfigurationDisconnect) Encode(w *protocol.Writer) { w.StringMax(p.Reason, 1<<18) }
func (p *ConfigurationDisconnect) Decode(r *protocol.Reader) error {
	p.Reason = r.StringMax(1 << 18)
	return r.Err()
}

// RegisterConfiguration adds the Configuration-phase packets to reg.
func RegisterConfiguration(reg *protocol.Registry) {
	reg.Register(conn.Configuration, conn.Clientbound, 0x02, func() protocol.Packet { return &ConfigurationFinish{} })
	reg.Register(conn.Configuration, conn.Serverbound, 0x02, func() protocol.Packet { return &ConfigurationFinishAck{} })
	reg.Register(conn.Configuration, conn.Clientbound, 0x03, func() protocol.Packet { return &ConfigurationKeepAlive{} })
	reg.Register(conn.Configuration, conn.Serverbound, 0x03, func() protocol.Packet { return &ConfigurationKeepAliveAck{} })
	reg.Register(conn.Configuration, conn.Clientbound, 0x01, func() protocol.Packet { return &ConfigurationDisconnect{} })
}
