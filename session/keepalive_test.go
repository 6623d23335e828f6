package session

import "testing"

func TestKeepAliveAckClearsMisses(t *testing.T) {
	var k KeepAlive
	k.Send(42)
	if timedOut := k.Tick(); timedOut {
		t.Fatal("one miss must not time out the connection")
	}
	if err := k.Ack(42); err != nil {
		t.Fatalf("Ack(42): %v", err)
	}
	if timedOut := k.Tick(); timedOut {
		t.Fatal("an acknowledged keepalive must not count as a miss")
	}
}

func TestKeepAliveMismatchedNonce(t *testing.T) {
	var k KeepAlive
	k.Send(1)
	if err := k.Ack(2); err == nil {
		t.Fatal("expected an error for a mismatched nonce")
	}
}

func TestKeepAliveTimesOutAfterTwoMisses(t *testing.T) {
	var k KeepAlive
	k.Send(1)
	k.Tick() // miss 1
	if timedOut := k.Tick(); !timedOut {
		t.Fatal("expected a timeout after two consecutive misses")
	}
}
