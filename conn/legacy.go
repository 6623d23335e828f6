package conn

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// LegacyPingDetectSleep is how long the handler waits for more bytes after
// seeing a lone 0xFE before deciding between a legacy ping and a modern
// handshake that happens to start the same way. The source's equivalent
// sleep is a tuning parameter, not a contract (§9).
var LegacyPingDetectSleep = 10 * time.Millisecond

// LegacyPingVariant identifies which of the three legacy ping formats a
// client used (§6.3).
type LegacyPingVariant int

const (
	// NotLegacy means the connection is not a legacy ping at all.
	NotLegacy LegacyPingVariant = iota
	// LegacyPing13 is the <=1.3 format: a bare 0xFE.
	LegacyPing13
	// LegacyPing145 is the 1.4-1.5 format: 0xFE 0x01.
	LegacyPing145
	// LegacyPing16 is the 1.6 format: 0xFE 0x01 0xFA.
	LegacyPing16
)

// DetectLegacyPing peeks at the head of the stream without consuming it and
// classifies it per §6.3. It sleeps up to LegacyPingDetectSleep waiting for
// enough bytes to disambiguate a lone 0xFE (which could also be the first
// byte of a VarInt-framed modern handshake, though no legitimate handshake
// packet_length VarInt starts with 0xFE without continuing).
func DetectLegacyPing(br *bufio.Reader) (LegacyPingVariant, error) {
	first, err := br.Peek(1)
	if err != nil {
		return NotLegacy, err
	}
	if first[0] != 0xFE {
		return NotLegacy, nil
	}

	deadline := time.Now().Add(LegacyPingDetectSleep)
	for br.Buffered() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	buf, _ := br.Peek(3)
	switch {
	case len(buf) >= 3 && buf[1] == 0x01 && buf[2] == 0xFA:
		return LegacyPing16, nil
	case len(buf) >= 2 && buf[1] == 0x01:
		return LegacyPing145, nil
	default:
		return LegacyPing13, nil
	}
}

// LegacyStatus is the minimal information needed to answer any of the three
// legacy ping variants.
type LegacyStatus struct {
	ProtocolVersion int
	MCVersion       string
	MOTD            string
	Players         int
	MaxPlayers      int
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// EncodeLegacyResponse renders s as the kick-packet payload appropriate for
// variant, UTF-16BE encoded and length-framed per the legacy convention
// (§6.3). The returned bytes include the leading 0xFF packet id and the
// 16-bit length prefix (in UTF-16 code units) the legacy client expects.
func EncodeLegacyResponse(variant LegacyPingVariant, s LegacyStatus) ([]byte, error) {
	var payload string
	switch variant {
	case LegacyPing16, LegacyPing145:
		payload = strings.Join([]string{
			"§1",
			strconv.Itoa(s.ProtocolVersion),
			s.MCVersion,
			s.MOTD,
			strconv.Itoa(s.Players),
			strconv.Itoa(s.MaxPlayers),
		}, "\x00")
	case LegacyPing13:
		payload = fmt.Sprintf("%s§%d§%d", s.MOTD, s.Players, s.MaxPlayers)
	default:
		return nil, fmt.Errorf("conn: %v is not a legacy ping variant", variant)
	}

	enc := utf16be.NewEncoder()
	body, err := enc.Bytes([]byte(payload))
	if err != nil {
		return nil, fmt.Errorf("conn: encode legacy response: %w", err)
	}
	codeUnits := len(body) / 2

	out := make([]byte, 0, 3+len(body))
	out = append(out, 0xFF)
	out = append(out, byte(codeUnits>>8), byte(codeUnits))
	out = append(out, body...)
	return out, nil
}
