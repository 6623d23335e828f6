// Package server wires the core's packages into a runnable process: it
// accepts connections, drives them through the handshake/status/login/
// configuration phases, and once a client reaches Play, registers it with
// the tick scheduler so every subsequent tick drains its events, simulates
// its entity, diffs its view, and flushes its send buffer (§4.4, §4.9).
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emberforge/core/conn"
	"github.com/emberforge/core/entity"
	"github.com/emberforge/core/layer"
	"github.com/emberforge/core/playerlist"
	"github.com/emberforge/core/protocol"
	"github.com/emberforge/core/protocol/packet"
	"github.com/emberforge/core/session"
	"github.com/emberforge/core/tick"
	"github.com/emberforge/core/world"
)

var registry = packet.NewRegistry()

// playerSession is everything the server tracks for one connected player:
// the raw socket, the session/event-dispatch layer on top of it, the
// per-client view trackers, and the entity representing it in the world.
type playerSession struct {
	netConn net.Conn
	sess    *session.Session
	entity  *entity.Entity

	chunks   *layer.ChunkTracker
	entities *layer.EntityTracker
	roster   *playerlist.Tracker

	keepAliveNonce int64
}

// Server is a running emberforge process: one tick.Scheduler, one entity
// registry, one global chunk layer, and the set of connected sessions.
type Server struct {
	conf Config
	log  *slog.Logger

	scheduler *tick.Scheduler
	entities  *entity.Manager
	chunks    *world.ChunkLayer
	roster    *playerlist.Roster

	listener net.Listener

	mu       sync.Mutex
	sessions map[uuid.UUID]*playerSession

	schedCtx    context.Context
	schedCancel context.CancelFunc

	keepAliveEveryTicks uint64
	lastKeepAliveTick   uint64
}

// Chunks returns the server's global chunk layer, so callers (world
// generation, a plugin, a test) can populate it before players arrive.
func (s *Server) Chunks() *world.ChunkLayer { return s.chunks }

// Entities returns the server's entity registry.
func (s *Server) Entities() *entity.Manager { return s.entities }

// TPS returns the scheduler's most recently sampled ticks-per-second.
func (s *Server) TPS() float64 { return s.scheduler.TPS() }

// PlayerCount returns the number of players currently in Play phase.
func (s *Server) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// PlayerNames returns the display name of every player currently in Play
// phase, in no particular order.
func (s *Server) PlayerNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sessions))
	for _, e := range s.roster.Entries() {
		names = append(names, e.Name)
	}
	return names
}

// Whitelist returns the server's whitelist, or nil if the configured
// Allower is not a *Whitelist.
func (s *Server) Whitelist() *Whitelist {
	wl, _ := s.conf.Allower.(*Whitelist)
	return wl
}

// Listen opens the server's listening socket. It does not yet accept
// connections; call Serve for that.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", s.conf.Address)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	s.listener = l
	return nil
}

// Serve runs the tick scheduler and the connection-accept loop until ctx is
// cancelled. It blocks until both have stopped.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return fmt.Errorf("server: Serve called before Listen")
	}
	s.schedCtx, s.schedCancel = context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.scheduler.Run(s.schedCtx)
	}()
	go func() {
		defer wg.Done()
		s.acceptLoop(s.schedCtx)
	}()

	<-ctx.Done()
	s.Stop()
	wg.Wait()
	return nil
}

// Stop closes the listening socket and stops the tick scheduler. Already
// connected clients are not explicitly disconnected, and cancelling the
// scheduler context does not end their goroutines: each connection's
// goroutines keep running until its socket is closed.
func (s *Server) Stop() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.schedCancel != nil {
		s.schedCancel()
	}
	s.scheduler.Stop()
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.log.Error("accept", "err", err)
			return
		}
		go s.handleConn(ctx, nc)
	}
}

// handleConn drives one connection synchronously through Handshake,
// Status/Login and Configuration. Only once it reaches Play is the
// connection handed to the tick thread via register.
func (s *Server) handleConn(ctx context.Context, nc net.Conn) {
	remote := nc.RemoteAddr().String()
	log := slog.New(s.log.Handler()).With("remote", remote)
	c := conn.NewConn(nc, remote)

	next, err := s.handleHandshake(c, nc)
	if err != nil {
		log.Debug("handshake failed", "err", err)
		_ = nc.Close()
		return
	}

	switch next {
	case packet.NextStatus:
		s.handleStatus(c, nc)
		_ = nc.Close()
		return
	case packet.NextLogin:
		// fall through to login below
	default:
		_ = nc.Close()
		return
	}

	name, id, ok := s.handleLogin(ctx, c, nc, log)
	if !ok {
		_ = nc.Close()
		return
	}

	if err := s.handleConfiguration(c, nc); err != nil {
		log.Debug("configuration failed", "err", err)
		_ = nc.Close()
		return
	}
	if err := c.EnterPlay(); err != nil {
		log.Error("enter play", "err", err)
		_ = nc.Close()
		return
	}

	s.startPlaySession(c, nc, name, id, log)
}

func (s *Server) handleHandshake(c *conn.Conn, nc net.Conn) (packet.NextState, error) {
	id, body, err := c.Decoder.ReadPacket()
	if err != nil {
		return 0, err
	}
	pkt, err := registry.Decode(conn.Handshake, conn.Serverbound, id, body)
	if err != nil {
		return 0, err
	}
	hs, ok := pkt.(*packet.Handshake)
	if !ok {
		return 0, fmt.Errorf("server: expected Handshake, got %T", pkt)
	}
	if err := c.Handshake(int32(hs.Next)); err != nil {
		return 0, err
	}
	return hs.Next, nil
}

func (s *Server) handleStatus(c *conn.Conn, nc net.Conn) {
	for {
		id, body, err := c.Decoder.ReadPacket()
		if err != nil {
			return
		}
		pkt, err := registry.Decode(conn.Status, conn.Serverbound, id, body)
		if err != nil {
			return
		}
		switch p := pkt.(type) {
		case *packet.StatusRequest:
			resp := &packet.StatusResponse{JSON: s.statusJSON()}
			if err := writeOne(c, nc, idStatusResponse, resp); err != nil {
				return
			}
		case *packet.StatusPing:
			pong := &packet.StatusPong{Payload: p.Payload}
			if err := writeOne(c, nc, idStatusPong, pong); err != nil {
				return
			}
			return
		}
	}
}

func (s *Server) statusJSON() string {
	return fmt.Sprintf(`{"version":{"name":"emberforge","protocol":767},"players":{"max":%d,"online":%d},"description":{"text":%q}}`,
		s.conf.MaxPlayers, s.PlayerCount(), s.conf.Name)
}

// handleLogin drives the Login phase to completion, returning the
// authenticated username and UUID. The encryption key exchange itself
// (RSA, EncryptionRequest/Response) is an external collaborator per §1;
// this handler only consults s.conf.Verifier and s.conf.Allower once it
// has a claimed identity.
func (s *Server) handleLogin(ctx context.Context, c *conn.Conn, nc net.Conn, log *slog.Logger) (string, uuid.UUID, bool) {
	id, body, err := c.Decoder.ReadPacket()
	if err != nil {
		return "", uuid.UUID{}, false
	}
	pkt, err := registry.Decode(conn.Login, conn.Serverbound, id, body)
	if err != nil {
		return "", uuid.UUID{}, false
	}
	hello, ok := pkt.(*packet.LoginHello)
	if !ok {
		return "", uuid.UUID{}, false
	}

	profile, err := s.conf.Verifier.Verify(ctx, hello.Username, nil)
	if err != nil {
		_ = writeOne(c, nc, idLoginDisconnect, &packet.LoginDisconnect{Reason: "authentication failed"})
		return "", uuid.UUID{}, false
	}

	playerUUID := hello.UUID
	if playerUUID == (uuid.UUID{}) {
		playerUUID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("OfflinePlayer:"+profile.Username))
	}

	if reason, allowed := s.conf.Allower.Allow(nc.RemoteAddr(), profile.Username, playerUUID); !allowed {
		_ = writeOne(c, nc, idLoginDisconnect, &packet.LoginDisconnect{Reason: reason})
		return "", uuid.UUID{}, false
	}
	if s.conf.MaxPlayers > 0 && s.PlayerCount() >= s.conf.MaxPlayers {
		_ = writeOne(c, nc, idLoginDisconnect, &packet.LoginDisconnect{Reason: "server is full"})
		return "", uuid.UUID{}, false
	}

	if s.conf.CompressionThreshold >= 0 {
		if err := writeOne(c, nc, idLoginCompression, &packet.LoginCompression{Threshold: s.conf.CompressionThreshold}); err != nil {
			return "", uuid.UUID{}, false
		}
		c.Encoder.EnableCompression(int(s.conf.CompressionThreshold))
		c.Decoder.EnableCompression(int(s.conf.CompressionThreshold))
	}

	if err := writeOne(c, nc, idLoginSuccess, &packet.LoginSuccess{UUID: playerUUID, Username: profile.Username}); err != nil {
		return "", uuid.UUID{}, false
	}
	if err := c.EnterConfiguration(); err != nil {
		log.Error("enter configuration", "err", err)
		return "", uuid.UUID{}, false
	}
	return profile.Username, playerUUID, true
}

func (s *Server) handleConfiguration(c *conn.Conn, nc net.Conn) error {
	if err := writeOne(c, nc, idConfigurationFinish, &packet.ConfigurationFinish{}); err != nil {
		return err
	}
	for {
		id, body, err := c.Decoder.ReadPacket()
		if err != nil {
			return err
		}
		pkt, err := registry.Decode(conn.Configuration, conn.Serverbound, id, body)
		if err != nil {
			var unknown *protocol.ErrUnknownPacket
			if errors.As(err, &unknown) {
				continue
			}
			return err
		}
		if _, ok := pkt.(*packet.ConfigurationFinishAck); ok {
			return nil
		}
	}
}

// startPlaySession builds the per-player state and registers it with the
// server, then begins its reader loop and blocks until the connection is
// marked closed (polled through waitClosed).
func (s *Server) startPlaySession(c *conn.Conn, nc net.Conn, name string, id uuid.UUID, log *slog.Logger) {
	sess := session.New(c, registry, log)
	e := entity.New(id, 0)
	s.entities.Insert(e)

	ps := &playerSession{
		netConn:  nc,
		sess:     sess,
		entity:   e,
		chunks:   layer.NewChunkTracker(),
		entities: layer.NewEntityTracker(),
		roster:   playerlist.NewTracker(),
	}

	s.mu.Lock()
	s.sessions[id] = ps
	s.mu.Unlock()

	s.roster.Add(playerlist.Entry{UUID: id, Name: name, GameMode: 0})

	spawnID := sess.Teleport.Teleport(0, 64, 0, 0, 0)
	ps.entity.Position = [3]float64{0, 64, 0}
	_ = writeOne(c, nc, idPlayerPositionLook, &packet.PlayerPositionLook{
		X: 0, Y: 64, Z: 0, TeleportID: spawnID,
	})

	go sess.ReaderLoop()
	// Blocks until the socket is closed, either by the client or by a
	// tick-thread disconnect; the scheduler's hooks are what actually pump
	// packets to/from this session in the meantime.
	<-waitClosed(c)

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.roster.Remove(id)
	e.Despawned = true
	_ = nc.Close()
}

// waitClosed returns a channel that closes once c reports itself closed. It
// is a small polling bridge rather than a dedicated notification channel on
// Conn, since Close can be called from either the reader goroutine or the
// tick thread.
func waitClosed(c *conn.Conn) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for {
			if closed, _ := c.Closed(); closed {
				return
			}
			time.Sleep(50 * time.Millisecond)
		}
	}()
	return ch
}

func writeOne(c *conn.Conn, nc net.Conn, id int32, p protocol.Packet) error {
	w := &protocol.Writer{}
	p.Encode(w)
	if err := w.Err(); err != nil {
		return err
	}
	if err := c.Encoder.AppendPacket(id, w.Bytes()); err != nil {
		return err
	}
	_, err := nc.Write(c.Encoder.Take())
	return err
}

// wireScheduler registers every per-tick stage this server needs: draining
// session queues, applying movement/chat events, diffing each client's
// views, and flushing send buffers, in the fixed order §4.9 requires.
func (s *Server) wireScheduler() {
	s.scheduler.OnPreUpdate(func() {
		s.eachSession(func(ps *playerSession) { ps.sess.DrainPreUpdate() })
	})

	s.scheduler.OnEventLoop(func() bool {
		s.eachSession(func(ps *playerSession) { s.applyEvents(ps) })
		return false
	})

	pu := s.scheduler.PostUpdate()
	pu.RemoveDespawned = append(pu.RemoveDespawned, func() {
		for _, e := range s.entities.RemoveDespawned() {
			_ = e
		}
	})
	pu.BroadcastGlobalLayers = append(pu.BroadcastGlobalLayers, s.broadcastKeepAlives)
	pu.DiffViews = append(pu.DiffViews, s.diffViews)
	pu.FlushSendBuffers = append(pu.FlushSendBuffers, func() {
		s.eachSession(func(ps *playerSession) { s.flush(ps) })
	})
	pu.ClearOneShotFlags = append(pu.ClearOneShotFlags, func() {
		s.entities.Each(func(e *entity.Entity) {
			e.ClearOneShot()
			e.SyncPrev()
		})
		s.chunks.Each(func(col *world.Column) {
			for _, sec := range col.Chunk.Sections() {
				sec.ClearDelta()
			}
			col.Chunk.ClearChangedBiomes()
		})
	})
}

// broadcastKeepAlives stamps a fresh nonce to every Play-phase session once
// every KeepAliveInterval's worth of ticks, and disconnects any session
// that missed two intervals in a row (§4.11, §5).
func (s *Server) broadcastKeepAlives() {
	tickCount := s.scheduler.TickCount()
	if tickCount-s.lastKeepAliveTick < s.keepAliveEveryTicks {
		return
	}
	s.lastKeepAliveTick = tickCount

	s.eachSession(func(ps *playerSession) {
		if ps.sess.KeepAlive.Tick() {
			ps.sess.Conn.Close(fmt.Errorf("server: keepalive timeout"))
			return
		}
		nonce := rand.Int64()
		ps.keepAliveNonce = nonce
		ps.sess.KeepAlive.Send(nonce)
		_ = ps.sess.Conn.Encoder.AppendPacket(idKeepAlive, encodeOrNil(&packet.KeepAlive{ID: nonce}))
	})
}

func (s *Server) eachSession(fn func(*playerSession)) {
	s.mu.Lock()
	snapshot := make([]*playerSession, 0, len(s.sessions))
	for _, ps := range s.sessions {
		snapshot = append(snapshot, ps)
	}
	s.mu.Unlock()
	for _, ps := range snapshot {
		fn(ps)
	}
}

func (s *Server) applyEvents(ps *playerSession) {
	for _, pkt := range ps.sess.Events() {
		switch p := pkt.(type) {
		case *packet.PlayerPosition:
			if ps.sess.Teleport.Pending() {
				continue
			}
			ps.entity.Position = [3]float64{p.X, p.Y, p.Z}
			ps.entity.OnGround = p.OnGround
		case *packet.TeleportConfirm:
			if err := ps.sess.Teleport.Confirm(p.TeleportID); err != nil {
				ps.sess.Conn.Close(err)
			}
		case *packet.ChatAck:
			if err := ps.sess.ChatAck.Validate(p.BaseIndex, p.Bitmap); err != nil {
				ps.sess.Conn.Close(err)
			}
		case *packet.KeepAliveAck:
			if err := ps.sess.KeepAlive.Ack(p.ID); err != nil {
				ps.sess.Conn.Close(err)
			}
		}
	}
}

// diffViews fans per-client chunk/entity/roster diffing out across
// GOMAXPROCS workers via errgroup, computing each client's packet batch
// into a scratch slice before appending anything to its encoder, so a
// worker error never leaves a partially-applied diff visible (§5).
func (s *Server) diffViews() {
	s.mu.Lock()
	snapshot := make([]*playerSession, 0, len(s.sessions))
	for _, ps := range s.sessions {
		snapshot = append(snapshot, ps)
	}
	s.mu.Unlock()

	type outbox struct {
		ps    *playerSession
		chunk layer.Diff
		ent   layer.EntityDiff
		pl    playerlist.Diff
	}
	boxes := make([]outbox, len(snapshot))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ps := range snapshot {
		i, ps := i, ps
		g.Go(func() error {
			center := world.PosFromBlock(int32(ps.entity.Position[0]), int32(ps.entity.Position[2]))
			chunkDiff := ps.chunks.Update(center, s.conf.ViewDistance, s.chunks)

			var candidates []*entity.Entity
			s.entities.Each(func(e *entity.Entity) { candidates = append(candidates, e) })
			entDiff := ps.entities.Update(candidates, ps.entity.ID)

			rosterDiff := ps.roster.Update(s.roster)

			boxes[i] = outbox{ps: ps, chunk: chunkDiff, ent: entDiff, pl: rosterDiff}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("view diff", "err", err)
		return
	}

	for _, b := range boxes {
		applyChunkDiff(b.ps, b.chunk)
		applyEntityDiff(b.ps, b.ent)
		applyRosterDiff(b.ps, b.pl)
	}
}

func applyChunkDiff(ps *playerSession, d layer.Diff) {
	for _, p := range d.Init {
		_ = ps.sess.Conn.Encoder.AppendPacket(idChunkData, encodeOrNil(p))
	}
	for _, p := range d.Update {
		appendTyped(ps, p)
	}
	for _, p := range d.Unload {
		_ = ps.sess.Conn.Encoder.AppendPacket(idUnloadChunk, encodeOrNil(p))
	}
}

func appendTyped(ps *playerSession, p protocol.Packet) {
	var id int32
	switch p.(type) {
	case *packet.BlockUpdate:
		id = idBlockUpdate
	case *packet.ChunkDeltaUpdate:
		id = idChunkDeltaUpdate
	case *packet.BiomeUpdate:
		id = idBiomeUpdate
	default:
		return
	}
	_ = ps.sess.Conn.Encoder.AppendPacket(id, encodeOrNil(p))
}

func applyEntityDiff(ps *playerSession, d layer.EntityDiff) {
	for _, p := range d.Spawn {
		_ = ps.sess.Conn.Encoder.AppendPacket(idEntitySpawn, encodeOrNil(p))
	}
	for _, p := range d.MetadataInit {
		_ = ps.sess.Conn.Encoder.AppendPacket(idEntityMetadata, encodeOrNil(p))
	}
	for _, p := range d.Metadata {
		_ = ps.sess.Conn.Encoder.AppendPacket(idEntityMetadata, encodeOrNil(p))
	}
	for _, p := range d.PositionDelta {
		_ = ps.sess.Conn.Encoder.AppendPacket(idEntityPositionDelta, encodeOrNil(p))
	}
	if d.Despawn != nil {
		_ = ps.sess.Conn.Encoder.AppendPacket(idEntityDespawn, encodeOrNil(d.Despawn))
	}
}

func applyRosterDiff(ps *playerSession, d playerlist.Diff) {
	for _, p := range d.Add {
		_ = ps.sess.Conn.Encoder.AppendPacket(idPlayerInfoAdd, encodeOrNil(p))
	}
	for _, p := range d.Remove {
		_ = ps.sess.Conn.Encoder.AppendPacket(idPlayerInfoRemove, encodeOrNil(p))
	}
}

func encodeOrNil(p protocol.Packet) []byte {
	w := &protocol.Writer{}
	p.Encode(w)
	return w.Bytes()
}

func (s *Server) flush(ps *playerSession) {
	out := ps.sess.Conn.Encoder.Take()
	if len(out) == 0 {
		return
	}
	if _, err := ps.netConn.Write(out); err != nil {
		ps.sess.Conn.Close(err)
	}
}
