package server

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml"

	"github.com/emberforge/core/auth"
	"github.com/emberforge/core/entity"
	"github.com/emberforge/core/playerlist"
	"github.com/emberforge/core/tick"
	"github.com/emberforge/core/world"
)

// Allower decides whether a connecting player may complete login. The
// Whitelist type implements it; a Config with a nil Allower allows anyone
// to join (§4.4, §4.12).
type Allower interface {
	Allow(addr net.Addr, name string, id uuid.UUID) (reason string, ok bool)
}

type allower struct{}

func (allower) Allow(net.Addr, string, uuid.UUID) (string, bool) { return "", true }

// Config contains the options for starting a Server. Building one by hand
// is only meant for tests and embedders with unusual requirements; most
// callers should populate a UserConfig and call UserConfig.Config instead.
type Config struct {
	// Log is the Logger used by the server and everything it wires up. If
	// nil, Log is set to slog.Default().
	Log *slog.Logger
	// Address is the TCP address the server listens on (e.g. ":25565").
	Address string
	// Name is shown to clients in the Status phase's server list entry.
	Name string
	// TickRate is the scheduler's tick rate in Hz. Defaults to
	// tick.DefaultRate if zero or negative.
	TickRate int
	// ViewDistance is the radius, in chunks, of the chunk layer broadcast
	// to each client (§4.8).
	ViewDistance int32
	// MaxPlayers caps simultaneous logins. Zero means unlimited.
	MaxPlayers int
	// CompressionThreshold is the frame size, in bytes, at or above which
	// outbound packets are ZLib-compressed. Negative disables compression.
	CompressionThreshold int32
	// OnlineMode selects whether Verifier is consulted during Login. When
	// false, auth.Offline is used regardless of Verifier.
	OnlineMode bool
	// Verifier authenticates a client's claimed identity when OnlineMode is
	// true. Required in that case; Config.New returns an error if it is
	// nil.
	Verifier auth.Verifier
	// Allower may reject a login before it completes (e.g. a whitelist). A
	// nil Allower allows every connection.
	Allower Allower
	// KeepAliveInterval is how often the scheduler pings each Play-phase
	// connection. Defaults to 15s if zero.
	KeepAliveInterval time.Duration
}

// New builds a Server from conf, filling in defaults for anything left
// zero. The returned Server has not started listening; call Server.Listen.
func (conf Config) New() (*Server, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Name == "" {
		conf.Name = "Emberforge Server"
	}
	if conf.TickRate <= 0 {
		conf.TickRate = tick.DefaultRate
	}
	if conf.ViewDistance <= 0 {
		conf.ViewDistance = 10
	}
	if conf.KeepAliveInterval <= 0 {
		conf.KeepAliveInterval = 15 * time.Second
	}
	if conf.Allower == nil {
		conf.Allower = allower{}
	}
	if conf.OnlineMode && conf.Verifier == nil {
		return nil, fmt.Errorf("server: config: online mode enabled but no Verifier configured")
	}
	if !conf.OnlineMode {
		conf.Verifier = auth.Offline{}
	}

	ticksPerInterval := uint64(conf.KeepAliveInterval.Seconds() * float64(conf.TickRate))
	if ticksPerInterval == 0 {
		ticksPerInterval = 1
	}

	srv := &Server{
		conf:                conf,
		log:                 conf.Log,
		scheduler:           tick.NewScheduler(conf.TickRate, conf.Log),
		entities:            entity.NewManager(conf.Log),
		chunks:              world.NewChunkLayer(),
		roster:              playerlist.NewRoster(),
		sessions:            make(map[uuid.UUID]*playerSession),
		keepAliveEveryTicks: ticksPerInterval,
	}
	srv.wireScheduler()
	return srv, nil
}

// UserConfig is the TOML-serialisable configuration surface a process
// reads from disk; Config is the runtime type Config.New actually
// consumes. The split mirrors the teacher's own two-layer configuration
// (UserConfig.Config converts one into the other).
type UserConfig struct {
	Network struct {
		// Address is the address the server listens on.
		Address string
		// CompressionThreshold is the frame size, in bytes, at or above
		// which packets are compressed. A negative value disables compression.
		CompressionThreshold int
	}
	Server struct {
		// Name is shown in the server list.
		Name string
		// OnlineMode controls whether connecting players must be verified
		// through the configured auth.Verifier.
		OnlineMode bool
		// TickRate is the scheduler's rate in ticks per second.
		TickRate int
		// MaxPlayers caps simultaneous logins. 0 means unlimited.
		MaxPlayers int
		// ViewDistance is the chunk radius broadcast to each client.
		ViewDistance int
		// KeepAliveIntervalSeconds is how often clients are pinged.
		KeepAliveIntervalSeconds int
	}
	Whitelist struct {
		// Enabled controls whether the whitelist is enforced.
		Enabled bool
		// File is the path to the whitelist TOML file.
		File string
	}
}

// DefaultConfig returns a UserConfig with every field filled with a
// reasonable default.
func DefaultConfig() UserConfig {
	var c UserConfig
	c.Network.Address = ":25565"
	c.Network.CompressionThreshold = 256
	c.Server.Name = "Emberforge Server"
	c.Server.OnlineMode = false
	c.Server.TickRate = tick.DefaultRate
	c.Server.MaxPlayers = 20
	c.Server.ViewDistance = 10
	c.Server.KeepAliveIntervalSeconds = 15
	c.Whitelist.File = "whitelist.toml"
	return c
}

// Config converts uc into a runtime Config, loading the whitelist file from
// disk (creating it if absent) along the way.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	conf := Config{
		Log:                  log,
		Address:              uc.Network.Address,
		Name:                 uc.Server.Name,
		TickRate:             uc.Server.TickRate,
		ViewDistance:         int32(uc.Server.ViewDistance),
		MaxPlayers:           uc.Server.MaxPlayers,
		CompressionThreshold: int32(uc.Network.CompressionThreshold),
		OnlineMode:           uc.Server.OnlineMode,
		KeepAliveInterval:    time.Duration(uc.Server.KeepAliveIntervalSeconds) * time.Second,
	}

	whitelistFile := strings.TrimSpace(uc.Whitelist.File)
	if whitelistFile == "" {
		whitelistFile = "whitelist.toml"
	}
	wl, err := LoadWhitelist(whitelistFile)
	if err != nil {
		return conf, fmt.Errorf("load whitelist: %w", err)
	}
	wl.SetEnabled(uc.Whitelist.Enabled)
	conf.Allower = wl
	return conf, nil
}

// LoadUserConfig reads a UserConfig from the TOML file at path, writing out
// DefaultConfig's values first if the file does not yet exist.
func LoadUserConfig(path string) (UserConfig, error) {
	contents, err := readOrInitConfig(path)
	if err != nil {
		return UserConfig{}, err
	}
	uc := DefaultConfig()
	if len(contents) != 0 {
		if err := toml.Unmarshal(contents, &uc); err != nil {
			return UserConfig{}, fmt.Errorf("decode config: %w", err)
		}
	}
	return uc, nil
}
