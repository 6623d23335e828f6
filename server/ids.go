package server

// Packet ids for the Status, Play, Configuration and Login phases, mirrored
// from the ids the protocol/packet Register* functions assign. All are
// clientbound except idChatAck, the id of the serverbound ChatAck. The registry itself only
// resolves ids on decode; a sender has to know in advance which id a
// packet type was registered under, so these constants are this package's
// single source of truth for that mapping.
const (
	idStatusResponse = 0x00
	idStatusPong     = 0x01

	idKeepAlive          = 0x00
	idDisconnect         = 0x01
	idPlayerPositionLook = 0x02
	idChatAck            = 0x04
	idPlayerInfoAdd      = 0x05
	idPlayerInfoRemove   = 0x06

	idChunkData        = 0x20
	idUnloadChunk      = 0x21
	idBlockUpdate      = 0x22
	idChunkDeltaUpdate = 0x23
	idBiomeUpdate      = 0x24

	idEntitySpawn         = 0x30
	idEntityDespawn       = 0x31
	idEntityPositionDelta = 0x32
	idEntityVelocity      = 0x33
	idEntityMetadata      = 0x34
	idEntityStatus        = 0x35
	idEntityAnimation     = 0x36

	idConfigurationFinish    = 0x02
	idConfigurationKeepAlive = 0x03

	idLoginDisconnect  = 0x00
	idLoginSuccess     = 0x02
	idLoginCompression = 0x03
)
