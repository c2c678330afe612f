package app

import (
	"context"
	"encoding/json"
	"time"

	"classbattle-client/internal/allforall"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket"
	"go.uber.org/zap"
)

// AllForAllSession drives the student's Stroop game.
type AllForAllSession struct {
	*runner[allforall.State, allforall.Event, allforall.Effect]
	player allforall.Player
	opts   SessionOptions
}

func StartAllForAllSession(ctx context.Context, em socket.Emitter, p allforall.Player, opts SessionOptions) *AllForAllSession {
	opts = opts.withDefaults()
	opts.Logger = opts.Logger.With(zap.String("room", p.RoomID), zap.String("student", p.StudentID))
	s := &AllForAllSession{
		runner: newRunner(em, allforall.NewState(p, opts.Feedback), allforall.Apply, allforall.Event(allforall.Tick{}), opts),
		player: p,
		opts:   opts,
	}
	s.exec = s.execute
	s.listen(em)
	s.start(ctx)
	return s
}

func (s *AllForAllSession) listen(em socket.Emitter) {
	log := s.logger
	s.scope.On(protocol.StartAllForAll, func(raw json.RawMessage) {
		c, err := protocol.DecodeChallenge(raw, s.opts.QuestionDuration)
		if err != nil {
			log.Warn("bad start-all-for-all payload", zap.Error(err))
			return
		}
		s.post(allforall.StartChallenge{Challenge: c, Now: s.opts.Now})
	})
	s.scope.On(protocol.RoundResult, func(raw json.RawMessage) {
		res, ok, err := protocol.DecodeRoundResult(raw, s.player.StudentID)
		if err != nil {
			log.Warn("bad round-result payload", zap.Error(err))
			return
		}
		if ok {
			s.post(allforall.ServerResult{Result: res})
		}
	})
	onPlayers := func(raw json.RawMessage) {
		state, err := protocol.DecodeRoomState(raw)
		if err == nil && state.HasRoster {
			s.post(allforall.PlayersUpdate{Players: state.Students})
		}
	}
	s.scope.On(protocol.PlayersUpdate, onPlayers)
	s.scope.On(protocol.AllForAllUpdate, onPlayers)
	s.scope.On(socket.EventDisconnect, func(json.RawMessage) { s.post(allforall.Disconnected{}) })
	s.scope.On(socket.EventConnect, func(json.RawMessage) { s.post(allforall.Connected{}) })
	if !em.Connected() {
		s.post(allforall.Disconnected{})
	}
}

func (s *AllForAllSession) execute(fx allforall.Effect) {
	switch e := fx.(type) {
	case allforall.EmitSubmit:
		s.emit(protocol.SubmitAnswer, e)
	case allforall.StartCountdown:
		s.logger.Debug("challenge started", zap.Int("seconds", e.Seconds))
	case allforall.StopCountdown:
	}
}

// Press answers the current challenge.
func (s *AllForAllSession) Press(ctx context.Context, value string) error {
	return s.send(ctx, allforall.Press{Value: value})
}

// AllForAllHost drives the teacher's All-for-All room.
type AllForAllHost struct {
	*runner[allforall.HostState, allforall.Event, allforall.Effect]
	serverErr chan string
}

func StartAllForAllHost(ctx context.Context, em socket.Emitter, opts SessionOptions) *AllForAllHost {
	opts = opts.withDefaults()
	h := &AllForAllHost{
		runner:    newRunner(em, allforall.NewHostState(), allforall.ApplyHost, allforall.Event(allforall.Tick{}), opts),
		serverErr: make(chan string, 1),
	}
	h.exec = h.execute
	h.listen(em)
	h.start(ctx)
	return h
}

func (h *AllForAllHost) listen(em socket.Emitter) {
	log := h.logger
	h.scope.On(protocol.RoomCreated, func(raw json.RawMessage) {
		room, err := protocol.DecodeRoomCreated(raw)
		if err != nil {
			log.Warn("bad room-created payload", zap.Error(err))
			return
		}
		h.post(allforall.RoomOpened{Room: room})
	})
	onPlayers := func(raw json.RawMessage) {
		state, err := protocol.DecodeRoomState(raw)
		if err == nil && state.HasRoster {
			h.post(allforall.PlayersUpdate{Players: state.Students})
		}
	}
	h.scope.On(protocol.PlayersUpdate, onPlayers)
	h.scope.On(protocol.AllForAllUpdate, onPlayers)
	h.scope.On(protocol.Error, func(raw json.RawMessage) {
		msg := protocol.DecodeError(raw)
		log.Warn("server error", zap.String("message", msg))
		select {
		case h.serverErr <- msg:
		default:
		}
	})
	h.scope.On(socket.EventDisconnect, func(json.RawMessage) { h.post(allforall.Disconnected{}) })
	h.scope.On(socket.EventConnect, func(json.RawMessage) { h.post(allforall.Connected{}) })
	if !em.Connected() {
		h.post(allforall.Disconnected{})
	}
}

func (h *AllForAllHost) execute(fx allforall.Effect) {
	switch e := fx.(type) {
	case allforall.EmitOpenRoom:
		h.emit(protocol.OpenAllForAllRoom, e)
	case allforall.EmitCreateGame:
		h.emit(protocol.CreateGame, e)
	case allforall.EmitStartRound:
		h.emit(protocol.AllForAllStartRound, e)
	case allforall.EmitResetGame:
		h.emit(protocol.ResetGame, e)
	}
}

// Open opens the room and waits until the server assigned a code.
func (h *AllForAllHost) Open(ctx context.Context, teacherID string, timeout time.Duration) (domain.RoomRef, error) {
	updates, cancel := h.Subscribe()
	defer cancel()

	if !h.scope.Connected() {
		return domain.RoomRef{}, domain.ErrNotConnected
	}
	if err := h.send(ctx, allforall.OpenRoom{TeacherID: teacherID}); err != nil {
		return domain.RoomRef{}, err
	}
	room, err := waitFor(ctx, updates, h.serverErr, timeout, func(st allforall.HostState) (domain.RoomRef, bool) {
		return st.Room, st.Phase == allforall.HostOpen
	})
	if err != nil {
		h.post(allforall.OpenFailed{})
	}
	return room, err
}

// StartRound launches a challenge for every player in the room.
func (h *AllForAllHost) StartRound(ctx context.Context) error {
	return h.send(ctx, allforall.StartRound{})
}

// ResetRound puts the room back in the waiting state.
func (h *AllForAllHost) ResetRound(ctx context.Context) error {
	return h.send(ctx, allforall.ResetRound{})
}
