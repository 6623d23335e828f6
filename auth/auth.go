// Package auth defines the contract the Login phase calls through for
// online-mode session verification (§6.4, §4.4). Mojang's actual
// session-server handshake is out of scope for the core; this package only
// states the interface and ships a no-op implementation for offline mode.
package auth

import "context"

// Profile is what a successful Verify call returns: the authenticated
// identity to carry forward into Configuration/Play.
type Profile struct {
	Username string
	UUID     string // canonical (dashed) UUID string, as Mojang returns it
}

// Verifier checks a client's claimed username against its shared secret
// with an external authority. sharedSecretHash is the SHA-1-derived hash
// Mojang's session join endpoint expects, computed from the server id,
// shared secret and server public key; the core treats it as an opaque
// byte string and never computes it itself (RSA/session-server handshake
// is an explicit non-goal, §1).
type Verifier interface {
	Verify(ctx context.Context, username string, sharedSecretHash []byte) (Profile, error)
}

// Offline is the Verifier used when online-mode authentication is
// disabled: it trusts the client-claimed username outright and never
// contacts an external authority.
type Offline struct{}

// Verify implements Verifier by trusting username unconditionally.
func (Offline) Verify(_ context.Context, username string, _ []byte) (Profile, error) {
	return Profile{Username: username}, nil
}

var _ Verifier = Offline{}
