package session

import (
	"errors"
	"math/bits"
)

// ErrChatAckInvalid is returned by ChatAckValidator.Validate for any
// violation described in §4.10/§3.4; the caller disconnects the connection
// with a structured chat-validation error.
var ErrChatAckInvalid = errors.New("session: invalid chat acknowledgement")

const chatAckWindow = 20

// ChatAckValidator records every outbound signed message pushed so far and
// checks an inbound (base_index, bitmap) acknowledgement against them
// (§3.4). The list is never trimmed or shifted: base_index is an absolute
// position in it, and the bitmap covers the 20 messages starting there, so
// the list grows by one entry per Push for the validator's lifetime. The
// bound check below is preserved exactly as specified even
// though it rejects legitimate acknowledgements while fewer than 20
// messages have been sent — see spec §9's open question on this.
type ChatAckValidator struct {
	pending []bool // one slot per pushed message: outstanding (true) / acknowledged (false)
}

// NewChatAckValidator returns a validator with no messages sent yet.
func NewChatAckValidator() *ChatAckValidator { return &ChatAckValidator{} }

// Push records one more outbound signed message as pending.
func (v *ChatAckValidator) Push() {
	v.pending = append(v.pending, true)
}

// Validate checks an inbound acknowledgement. On success, every
// acknowledged slot's pending flag is cleared. On failure, ErrChatAckInvalid
// is returned and the validator's state is left unchanged.
func (v *ChatAckValidator) Validate(baseIndex int32, bitmap uint32) error {
	length := int32(len(v.pending))
	if baseIndex < 0 || baseIndex > length-chatAckWindow {
		return ErrChatAckInvalid
	}
	if bits.OnesCount32(bitmap) > chatAckWindow {
		return ErrChatAckInvalid
	}
	for i := 0; i < chatAckWindow; i++ {
		idx := int(baseIndex) + i
		set := bitmap&(1<<uint(i)) != 0
		if idx < 0 || idx >= len(v.pending) {
			if set {
				return ErrChatAckInvalid
			}
			continue
		}
		if set && !v.pending[idx] {
			// Acknowledging a slot that was never pending.
			return ErrChatAckInvalid
		}
		if !set && !v.pending[idx] {
			// A clear bit must correspond to a slot that is still pending
			// or doesn't exist — not one already validated.
			return ErrChatAckInvalid
		}
	}
	for i := 0; i < chatAckWindow; i++ {
		idx := int(baseIndex) + i
		if idx >= 0 && idx < len(v.pending) && bitmap&(1<<uint(i)) != 0 {
			v.pending[idx] = false
		}
	}
	return nil
}

// Len returns the number of outbound signed messages recorded so far.
func (v *ChatAckValidator) Len() int { return len(v.pending) }
