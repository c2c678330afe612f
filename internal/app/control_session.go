package app

import (
	"context"
	"encoding/json"
	"time"

	"classbattle-client/internal/battle"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket"
	"go.uber.org/zap"
)

// ControlSession drives the teacher's battle control screen.
type ControlSession struct {
	*runner[battle.ControlState, battle.Event, battle.Effect]
	opts      SessionOptions
	serverErr chan string
}

func StartControlSession(ctx context.Context, em socket.Emitter, opts SessionOptions) *ControlSession {
	opts = opts.withDefaults()
	s := &ControlSession{
		runner:    newRunner(em, battle.NewControlState(), battle.ApplyControl, battle.Event(battle.Tick{}), opts),
		opts:      opts,
		serverErr: make(chan string, 1),
	}
	s.exec = s.execute
	s.listen(em)
	s.start(ctx)
	return s
}

func (s *ControlSession) listen(em socket.Emitter) {
	log := s.logger
	s.scope.On(protocol.RoomCreated, func(raw json.RawMessage) {
		room, err := protocol.DecodeRoomCreated(raw)
		if err != nil {
			log.Warn("bad room-created payload", zap.Error(err))
			return
		}
		s.post(battle.RoomCreated{Room: room})
	})
	s.scope.On(protocol.RoomUpdate, func(raw json.RawMessage) {
		state, err := protocol.DecodeRoomState(raw)
		if err != nil {
			log.Warn("bad room-update payload", zap.Error(err))
			return
		}
		if state.HasRoster {
			s.post(battle.RoomUpdated{Students: state.Students})
		}
	})
	s.scope.On(protocol.AnswerReceived, func(raw json.RawMessage) {
		s.post(battle.AnswerReceived{Count: protocol.DecodeAnswerCount(raw)})
	})
	onResults := func(raw json.RawMessage) {
		standings, err := protocol.DecodeStandings(raw)
		if err != nil {
			log.Warn("bad round results payload", zap.Error(err))
			return
		}
		s.post(battle.RoundFinished{Standings: standings})
	}
	s.scope.On(protocol.RoundResult, onResults)
	s.scope.On(protocol.RoundFinished, onResults)
	s.scope.On(protocol.GameOver, func(raw json.RawMessage) {
		winners, full, err := protocol.DecodeGameOver(raw)
		if err != nil {
			log.Warn("bad game-over payload", zap.Error(err))
			return
		}
		s.post(battle.GameOver{Winners: winners, Full: full})
		s.after(s.opts.Podium, battle.PodiumDone{})
	})
	s.scope.On(protocol.Error, func(raw json.RawMessage) {
		msg := protocol.DecodeError(raw)
		log.Warn("server error", zap.String("message", msg))
		select {
		case s.serverErr <- msg:
		default:
		}
	})
	s.scope.On(socket.EventDisconnect, func(json.RawMessage) { s.post(battle.Disconnected{}) })
	s.scope.On(socket.EventConnect, func(json.RawMessage) { s.post(battle.Connected{}) })
	if !em.Connected() {
		s.post(battle.Disconnected{})
	}
}

func (s *ControlSession) execute(fx battle.Effect) {
	switch e := fx.(type) {
	case battle.EmitCreateRoom:
		s.emit(protocol.CreateRoom, e)
	case battle.EmitStartQuestion:
		s.emit(protocol.StartQuestion, e)
	case battle.EmitTimeUp:
		s.emit(protocol.TimeUp, e)
	case battle.EmitEndBattle:
		s.emit(protocol.EndBattle, e)
	case battle.StartCountdown:
		s.logger.Debug("countdown started", zap.Int("seconds", e.Seconds))
	case battle.StopCountdown:
	}
}

// Open asks the server for a room and waits until it is in the lobby.
func (s *ControlSession) Open(ctx context.Context, req battle.CreateRoom, timeout time.Duration) (domain.RoomRef, error) {
	updates, cancel := s.Subscribe()
	defer cancel()

	if req.QuestionSeconds <= 0 {
		req.QuestionSeconds = int(s.opts.QuestionDuration / time.Second)
	}
	if !s.scope.Connected() {
		return domain.RoomRef{}, domain.ErrNotConnected
	}
	if err := s.send(ctx, req); err != nil {
		return domain.RoomRef{}, err
	}
	room, err := waitFor(ctx, updates, s.serverErr, timeout, func(st battle.ControlState) (domain.RoomRef, bool) {
		return st.Room, st.Phase == battle.ControlLobby
	})
	if err != nil {
		s.post(battle.CreateFailed{})
	}
	return room, err
}

// StartQuestion moves the room to the next question.
func (s *ControlSession) StartQuestion(ctx context.Context) error {
	return s.send(ctx, battle.StartQuestion{Now: s.opts.Now})
}

// EndBattle asks the server to finish and rank the battle.
func (s *ControlSession) EndBattle(ctx context.Context) error {
	return s.send(ctx, battle.EndBattle{})
}

// waitFor reads state updates until pick reports done, a server error
// arrives, or the timeout or ctx ends the wait.
func waitFor[S, T any](ctx context.Context, updates <-chan S, serverErr <-chan string, timeout time.Duration, pick func(S) (T, bool)) (T, error) {
	var zero T
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return zero, domain.ErrSessionClosed
			}
			if v, done := pick(st); done {
				return v, nil
			}
		case msg := <-serverErr:
			if msg == "" {
				msg = domain.MsgRequestFailed
			}
			return zero, &RejectedError{Event: protocol.Error, Message: msg}
		case <-timer.C:
			return zero, domain.ErrTimeout
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
