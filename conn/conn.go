package conn

import (
	"fmt"
	"io"
)

// Conn is the connection state machine (C4): a phase, paired with the
// Encoder/Decoder that frame, compress and encrypt its bytes. Phase
// transitions are triggered solely by receipt of a serverbound packet in
// the current phase (§4.4); Conn only records the result of that decision,
// it does not itself decode packets.
type Conn struct {
	Decoder *Decoder
	Encoder *Encoder

	phase     Phase
	closed    bool
	closeErr  error
	remoteTag string
}

// NewConn wraps r in a Decoder, pairs it with a fresh Encoder, and starts
// in Handshake.
func NewConn(r io.Reader, remoteTag string) *Conn {
	return &Conn{
		Decoder:   NewDecoder(r),
		Encoder:   NewEncoder(),
		phase:     Handshake,
		remoteTag: remoteTag,
	}
}

// Phase returns the connection's current phase.
func (c *Conn) Phase() Phase { return c.phase }

// RemoteTag identifies the connection for logging (typically its remote
// address), independent of any higher-level player identity.
func (c *Conn) RemoteTag() string { return c.remoteTag }

// ErrInvalidHandshake is returned by Handshake for a next-state value other
// than 1 (status) or 2 (login).
var ErrInvalidHandshake = fmt.Errorf("conn: invalid handshake next state")

// Handshake applies the Handshake{next} transition of §4.4.
func (c *Conn) Handshake(next int32) error {
	if c.phase != Handshake {
		return fmt.Errorf("conn: handshake packet received outside Handshake phase (in %s)", c.phase)
	}
	switch next {
	case 1:
		c.phase = Status
	case 2:
		c.phase = Login
	default:
		return fmt.Errorf("%w: %d", ErrInvalidHandshake, next)
	}
	return nil
}

// EnterConfiguration transitions Login → Configuration after LoginSuccess.
func (c *Conn) EnterConfiguration() error {
	if c.phase != Login {
		return fmt.Errorf("conn: cannot enter Configuration from %s", c.phase)
	}
	c.phase = Configuration
	return nil
}

// EnterPlay transitions Configuration → Play once the client acknowledges
// the configuration phase.
func (c *Conn) EnterPlay() error {
	if c.phase != Configuration {
		return fmt.Errorf("conn: cannot enter Play from %s", c.phase)
	}
	c.phase = Play
	return nil
}

// Close marks the connection closed with the given reason. Calling Close
// more than once keeps the first reason.
func (c *Conn) Close(err error) {
	if c.closed {
		return
	}
	c.closed = true
	c.closeErr = err
}

// Closed reports whether Close has been called, and with what error (nil
// for a clean close).
func (c *Conn) Closed() (bool, error) { return c.closed, c.closeErr }
