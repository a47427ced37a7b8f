package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"party-deduction/internal/game"

	"go.uber.org/zap"
)

// Service runs the per-room read-advance-act-save cycle. All engine work
// for a room happens under that room's lock; events are published after
// the lock is released.
type Service struct {
	engine   *game.Engine
	sessions SessionStore
	rooms    RoomDirectory
	words    WordProvider
	presence PresenceTracker
	events   Publisher
	stats    StatsRecorder
	logger   *zap.Logger
	locks    *keyedMutex
	defaults game.Settings
	recent   int
	now      func() time.Time
}

type ServiceDeps struct {
	Engine   *game.Engine
	Sessions SessionStore
	Rooms    RoomDirectory
	Words    WordProvider
	Presence PresenceTracker
	Events   Publisher
	Stats    StatsRecorder
	Logger   *zap.Logger
	Defaults game.Settings
	// RecentLogs caps the log entries returned in a view; zero means all.
	RecentLogs int
	Now        func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	svc := &Service{
		engine:   deps.Engine,
		sessions: deps.Sessions,
		rooms:    deps.Rooms,
		words:    deps.Words,
		presence: deps.Presence,
		events:   deps.Events,
		stats:    deps.Stats,
		logger:   deps.Logger,
		locks:    newKeyedMutex(),
		defaults: deps.Defaults,
		recent:   deps.RecentLogs,
		now:      deps.Now,
	}
	if svc.engine == nil {
		svc.engine = game.NewEngine(nil, nil, game.EngineOptions{})
	}
	if svc.sessions == nil {
		svc.sessions = NewMemoryStore()
	}
	if svc.rooms == nil {
		svc.rooms = NewMemoryRooms()
	}
	if svc.words == nil {
		svc.words = NewStaticWords(nil)
	}
	if svc.presence == nil {
		svc.presence = NewMemoryPresence(15 * time.Second)
	}
	if svc.events == nil {
		svc.events = multiPublisher{}
	}
	if svc.stats == nil {
		svc.stats = NewMemoryStats()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.defaults == (game.Settings{}) {
		svc.defaults = game.DefaultSettings()
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc
}

// action mutates a loaded session. It must validate before mutating.
type action func(ctx context.Context, sess *game.Session, now time.Time) ([]game.Event, error)

// Start deals a new game for the room, discarding any previous session.
func (s *Service) Start(ctx context.Context, roomID, callerID string) (game.View, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return game.View{}, err
	}
	if callerID == "" || callerID != room.HostID {
		return game.View{}, game.ErrNotHost
	}
	setup := game.Setup{
		RoomID:   room.ID,
		Type:     room.GameType,
		Seats:    room.Seats,
		Settings: game.ParseSettings(s.defaults, room.Config),
	}
	if room.GameType == game.TypeUndercover {
		words, err := s.words.Pick(ctx)
		if err != nil || words.Civilian == "" || words.Undercover == "" {
			s.logger.Warn("word pair unavailable, using the built-in list", zap.String("room_id", roomID), zap.Error(err))
			words, _ = NewStaticWords(nil).Pick(ctx)
		}
		setup.Words = words
	}
	s.touch(ctx, roomID, callerID)

	unlock := s.locks.Lock(roomID)
	setup.Now = s.now()
	sess, events, err := s.engine.Start(ctx, setup)
	if err == nil {
		err = s.commit(ctx, nil, sess)
	}
	unlock()
	if err != nil {
		return game.View{}, err
	}

	if err := s.rooms.SetStatus(ctx, roomID, RoomPlaying); err != nil {
		s.logger.Warn("room status update failed", zap.String("room_id", roomID), zap.Error(err))
	}
	s.logger.Info("game started", zap.String("room_id", roomID), zap.String("game_type", string(sess.Type)), zap.Int("players", len(sess.Players)))
	s.events.Publish(ctx, roomID, events)
	return game.Project(sess, callerID, setup.Now, s.recent), nil
}

// State fast-forwards the room and returns the caller's view. Rooms without
// a game yet return a WAITING view of the roster.
func (s *Service) State(ctx context.Context, roomID, callerID string) (game.View, error) {
	return s.run(ctx, roomID, callerID, nil)
}

// Tick advances a room without a caller. Used by the sweeper.
func (s *Service) Tick(ctx context.Context, roomID string) error {
	_, err := s.run(ctx, roomID, "", nil)
	return err
}

func (s *Service) Speak(ctx context.Context, roomID, callerID, content string) (game.View, error) {
	return s.run(ctx, roomID, callerID, func(ctx context.Context, sess *game.Session, now time.Time) ([]game.Event, error) {
		return s.engine.Speak(ctx, sess, now, callerID, content)
	})
}

func (s *Service) Vote(ctx context.Context, roomID, callerID string, ballot game.Ballot) (game.View, error) {
	return s.run(ctx, roomID, callerID, func(ctx context.Context, sess *game.Session, now time.Time) ([]game.Event, error) {
		return s.engine.Vote(ctx, sess, now, callerID, ballot)
	})
}

func (s *Service) NightAction(ctx context.Context, roomID, callerID string, req game.NightRequest) (game.View, error) {
	return s.run(ctx, roomID, callerID, func(ctx context.Context, sess *game.Session, now time.Time) ([]game.Event, error) {
		return s.engine.NightAction(ctx, sess, now, callerID, req)
	})
}

// Heartbeat refreshes the caller's presence without touching the session.
func (s *Service) Heartbeat(ctx context.Context, roomID, playerID string) error {
	if playerID == "" {
		return nil
	}
	return s.presence.Touch(ctx, roomID, playerID)
}

func (s *Service) CreateRoom(ctx context.Context, gameType game.GameType, hostID, hostName string, config map[string]any) (Room, error) {
	if _, err := s.engine.Rules(gameType); err != nil {
		return Room{}, err
	}
	room, err := s.rooms.Create(ctx, gameType, hostID, hostName, config)
	if err != nil {
		return Room{}, err
	}
	s.touch(ctx, room.ID, hostID)
	s.logger.Info("room created", zap.String("room_id", room.ID), zap.String("game_type", string(gameType)))
	return room, nil
}

func (s *Service) JoinRoom(ctx context.Context, roomID, playerID, name string) (Room, game.Seat, error) {
	room, seat, err := s.rooms.Join(ctx, roomID, playerID, name, false)
	if err != nil {
		return Room{}, game.Seat{}, err
	}
	s.touch(ctx, roomID, playerID)
	return room, seat, nil
}

// AddAI seats an AI player. Only the host may fill seats.
func (s *Service) AddAI(ctx context.Context, roomID, callerID, name string) (Room, game.Seat, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return Room{}, game.Seat{}, err
	}
	if callerID == "" || callerID != room.HostID {
		return Room{}, game.Seat{}, errNotHostAI
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Bot %d", lowestFreeSeat(room.Seats))
	}
	return s.rooms.Join(ctx, roomID, "ai-"+newRoomID(), name, true)
}

func (s *Service) Room(ctx context.Context, roomID string) (Room, error) {
	return s.rooms.Get(ctx, roomID)
}

func (s *Service) PlayerStats(ctx context.Context, playerID string) ([]PlayerStats, error) {
	return s.stats.Stats(ctx, playerID)
}

var errNotHostAI = &game.Error{Kind: game.KindForbidden, Code: "not_host", Message: "only the room host can add AI players"}

func (s *Service) run(ctx context.Context, roomID, callerID string, act action) (game.View, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return game.View{}, err
	}
	s.touch(ctx, roomID, callerID)

	unlock := s.locks.Lock(roomID)
	view, events, settled, err := s.runLocked(ctx, room, callerID, act)
	unlock()

	if settled {
		if err := s.rooms.SetStatus(ctx, roomID, RoomWaiting); err != nil {
			s.logger.Warn("room status update failed", zap.String("room_id", roomID), zap.Error(err))
		}
	}
	s.events.Publish(ctx, roomID, events)
	return view, err
}

func (s *Service) runLocked(ctx context.Context, room Room, callerID string, act action) (game.View, []game.Event, bool, error) {
	sess, err := s.sessions.Load(ctx, room.ID)
	if errors.Is(err, errNoSession) {
		if act != nil {
			return game.View{}, nil, false, game.ErrNoActiveGame
		}
		return game.WaitingView(room.ID, room.GameType, room.Seats, callerID), nil, false, nil
	}
	if err != nil {
		return game.View{}, nil, false, fmt.Errorf("load session: %w", err)
	}
	before, err := cloneSession(sess)
	if err != nil {
		return game.View{}, nil, false, fmt.Errorf("clone session: %w", err)
	}

	now := s.now()
	var events []game.Event
	changed := false
	if online, ok := s.online(ctx, sess); ok {
		presence, touched := s.engine.SyncPresence(sess, now, online)
		events = append(events, presence...)
		changed = touched
	}
	events = append(events, s.engine.Advance(ctx, sess, now)...)

	var actErr error
	if act != nil {
		acted, err := act(ctx, sess, now)
		if err != nil {
			actErr = err
		} else {
			events = append(events, acted...)
			changed = true
		}
	}
	settledNow := false
	if sess.Settled() && !sess.StatsRecorded {
		if err := s.stats.Record(ctx, settlementOf(sess, now)); err != nil {
			s.logger.Warn("stats record failed", zap.String("room_id", sess.RoomID), zap.Error(err))
		} else {
			sess.StatsRecorded = true
			settledNow = true
			changed = true
			s.logger.Info("game settled", zap.String("room_id", sess.RoomID), zap.String("winner", string(sess.Winner)))
		}
	}

	if changed || len(events) > 0 {
		if err := s.commit(ctx, before, sess); err != nil {
			return game.View{}, nil, false, err
		}
	}
	if actErr != nil {
		return game.View{}, events, settledNow, actErr
	}
	return game.Project(sess, callerID, now, s.recent), events, settledNow, nil
}

// commit checks the session before saving it. A session that breaks an
// invariant is never written.
func (s *Service) commit(ctx context.Context, before, after *game.Session) error {
	err := game.CheckInvariants(after)
	if err == nil && before != nil {
		err = game.CheckTransition(before, after)
	}
	if err != nil {
		s.logger.Error("session invariant violated",
			zap.String("room_id", after.RoomID),
			zap.String("phase", string(after.Phase)),
			zap.Int("round", after.Round),
			zap.Error(err),
		)
		return err
	}
	if err := s.sessions.Save(ctx, after); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// online reports heartbeat state for the human players. A tracker failure
// skips the presence pass rather than disconnecting everybody.
func (s *Service) online(ctx context.Context, sess *game.Session) (map[string]bool, bool) {
	ids := make([]string, 0, len(sess.Players))
	for _, p := range sess.Players {
		if !p.IsAI {
			ids = append(ids, p.PlayerID)
		}
	}
	online, err := s.presence.Online(ctx, sess.RoomID, ids)
	if err != nil {
		s.logger.Warn("presence lookup failed", zap.String("room_id", sess.RoomID), zap.Error(err))
		return nil, false
	}
	return online, true
}

func (s *Service) touch(ctx context.Context, roomID, playerID string) {
	if err := s.Heartbeat(ctx, roomID, playerID); err != nil {
		s.logger.Warn("heartbeat failed", zap.String("room_id", roomID), zap.Error(err))
	}
}

// Sweep ticks every active room once.
func (s *Service) Sweep(ctx context.Context) int {
	ids, err := s.sessions.ActiveRooms(ctx)
	if err != nil {
		s.logger.Warn("active room lookup failed", zap.Error(err))
		return 0
	}
	for _, id := range ids {
		if err := s.Tick(ctx, id); err != nil {
			s.logger.Warn("room tick failed", zap.String("room_id", id), zap.Error(err))
		}
	}
	return len(ids)
}

// Archive removes settled sessions untouched since cutoff.
func (s *Service) Archive(ctx context.Context, cutoff time.Time) (int, error) {
	return s.sessions.ArchiveSettled(ctx, cutoff)
}
