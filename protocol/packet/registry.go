package packet

import "github.com/emberforge/core/protocol"

// NewRegistry returns a protocol.Registry with every packet type this
// package defines registered under its wire id.
func NewRegistry() *protocol.Registry {
	reg := protocol.NewRegistry()
	RegisterHandshake(reg)
	RegisterStatus(reg)
	RegisterLogin(reg)
	RegisterConfiguration(reg)
	RegisterPlayCore(reg)
	RegisterPlayChunk(reg)
	RegisterPlayEntity(reg)
	return reg
}
