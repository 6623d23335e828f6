package session

import (
	"errors"
	"log/slog"

	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/protocol"
)

// Session layers C10's event dispatch on top of a raw conn.Conn: it decodes
// frames off the wire on its own goroutine and hands typed packets to the
// tick thread through a bounded queue, so no packet handler ever blocks a
// tick on socket I/O (§5).
type Session struct {
	Conn     *conn.Conn
	Registry *protocol.Registry

	Teleport TeleportValidator
	ChatAck  *ChatAckValidator
	KeepAlive KeepAlive

	inbound chan protocol.Packet
	events  []protocol.Packet

	log *slog.Logger
}

// inboundQueueSize bounds how many decoded packets may sit ahead of the
// tick thread before the reader goroutine blocks. A client that floods
// packets faster than 20 ticks/s can drain them applies backpressure to
// its own socket rather than growing memory unbounded.
const inboundQueueSize = 256

// New returns a Session wrapping c, decoding packets via reg. A nil log
// falls back to slog.Default().
func New(c *conn.Conn, reg *protocol.Registry, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		Conn:      c,
		Registry:  reg,
		ChatAck:   NewChatAckValidator(),
		inbound:   make(chan protocol.Packet, inboundQueueSize),
		log:       log,
	}
}

// ReaderLoop decodes frames off c.Decoder until it errors or the
// connection closes, handing each decoded packet to the inbound queue. It
// is meant to run on the network I/O goroutine, never the tick thread.
func (s *Session) ReaderLoop() {
	defer close(s.inbound)
	for {
		if closed, _ := s.Conn.Closed(); closed {
			return
		}
		id, body, err := s.Conn.Decoder.ReadPacket()
		if err != nil {
			s.Conn.Close(err)
			return
		}
		pkt, err := s.Registry.Decode(s.Conn.Phase(), conn.Serverbound, id, body)
		if err != nil {
			var unknown *protocol.ErrUnknownPacket
			if errors.As(err, &unknown) {
				s.log.Debug("ignoring unknown packet", "remote", s.Conn.RemoteTag(), "id", id, "phase", s.Conn.Phase())
				continue
			}
			s.Conn.Close(err)
			return
		}
		s.inbound <- pkt
	}
}

// DrainPreUpdate moves every packet currently sitting in the inbound queue
// into the session's event buffer (§4.9 PreUpdate stage). It never blocks.
func (s *Session) DrainPreUpdate() {
	for {
		select {
		case pkt, ok := <-s.inbound:
			if !ok {
				return
			}
			s.events = append(s.events, pkt)
		default:
			return
		}
	}
}

// Events returns the packets queued since the last call and clears the
// buffer (§4.9 EventLoopUpdate stage).
func (s *Session) Events() []protocol.Packet {
	ev := s.events
	s.events = nil
	return ev
}
