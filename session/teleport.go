// Package session implements the event-dispatch and movement-validation
// concerns layered on top of a raw conn.Conn during the Play phase (C10):
// the server-initiated teleport handshake and the chat acknowledgement
// validator.
package session

import "fmt"

// TeleportValidator implements §4.10's teleport handshake: a monotonic id
// counter, the last position/look the server sent, and a pending count
// that blocks inbound movement until the client catches up.
type TeleportValidator struct {
	nextID  int32
	pending int
	lastID  int32
	X, Y, Z float64
	Yaw     float32
	Pitch   float32
}

// Teleport records a new server-initiated teleport and returns the id the
// client must echo back in TeleportConfirm.
func (v *TeleportValidator) Teleport(x, y, z float64, yaw, pitch float32) int32 {
	v.nextID++
	v.lastID = v.nextID
	v.pending++
	v.X, v.Y, v.Z, v.Yaw, v.Pitch = x, y, z, yaw, pitch
	return v.lastID
}

// Pending reports whether any teleport confirmation is outstanding; while
// true, inbound movement packets must be rejected without error (§4.10).
func (v *TeleportValidator) Pending() bool { return v.pending > 0 }

// Confirm processes a client TeleportConfirm. An id other than the most
// recently sent one is a protocol violation and fatal to the connection.
func (v *TeleportValidator) Confirm(id int32) error {
	if v.pending == 0 || id != v.lastID {
		return fmt.Errorf("session: unexpected teleport confirm id %d (want %d, pending %d)", id, v.lastID, v.pending)
	}
	v.pending--
	return nil
}
