package session

import "fmt"

// KeepAlive tracks the outstanding ping nonce for one connection (§4.11,
// §5). The tick scheduler sends a nonce at a fixed interval and calls Ack
// when the client's KeepAliveAck arrives; Tick reports whether the
// connection has gone silent for two intervals running.
type KeepAlive struct {
	pendingID int64
	pending   bool
	misses    int
}

// Send records a freshly-sent nonce as pending.
func (k *KeepAlive) Send(nonce int64) {
	k.pendingID = nonce
	k.pending = true
}

// ErrKeepAliveMismatch is returned by Ack when the client's nonce doesn't
// match the one most recently sent.
var ErrKeepAliveMismatch = fmt.Errorf("session: keepalive nonce mismatch")

// Ack processes a client KeepAliveAck. A mismatched nonce is a protocol
// violation; a correct one clears the pending flag and resets the miss
// counter.
func (k *KeepAlive) Ack(nonce int64) error {
	if !k.pending || nonce != k.pendingID {
		return ErrKeepAliveMismatch
	}
	k.pending = false
	k.misses = 0
	return nil
}

// Tick is called once per keepalive interval. If a previous nonce is still
// unacknowledged it counts as a miss and reports whether the connection
// should now be dropped (a miss over a second interval, §5).
func (k *KeepAlive) Tick() (timedOut bool) {
	if k.pending {
		k.misses++
	}
	return k.misses >= 2
}
