package app

import (
	"context"
	"encoding/json"

	"classbattle-client/internal/battle"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket"
	"go.uber.org/zap"
)

// BattleSession drives the student battle screen from socket events.
type BattleSession struct {
	*runner[battle.State, battle.Event, battle.Effect]
	player battle.Player
	opts   SessionOptions
}

// StartBattleSession subscribes to the battle events and starts the loop. The
// session ends when ctx is done or Close is called.
func StartBattleSession(ctx context.Context, em socket.Emitter, p battle.Player, opts SessionOptions) *BattleSession {
	opts = opts.withDefaults()
	opts.Logger = opts.Logger.With(zap.String("room", p.RoomID), zap.String("student", p.StudentID))
	s := &BattleSession{
		runner: newRunner(em, battle.NewState(p), battle.Apply, battle.Event(battle.Tick{}), opts),
		player: p,
		opts:   opts,
	}
	s.exec = s.execute
	s.listen(em)
	s.start(ctx)
	return s
}

func (s *BattleSession) listen(em socket.Emitter) {
	log := s.logger
	s.scope.On(protocol.NewQuestion, func(raw json.RawMessage) {
		snap, err := protocol.DecodeNewQuestion(raw, s.opts.QuestionDuration)
		if err != nil {
			log.Warn("bad new-question payload", zap.Error(err))
			return
		}
		s.post(battle.NewQuestion{Snapshot: snap, Now: s.opts.Now})
	})
	onResult := func(raw json.RawMessage) {
		res, ok, err := protocol.DecodeRoundResult(raw, s.player.StudentID)
		if err != nil {
			log.Warn("bad round-result payload", zap.Error(err))
			return
		}
		if ok {
			s.post(battle.RoundResult{Result: res})
		}
	}
	s.scope.On(protocol.RoundResult, onResult)
	s.scope.On(protocol.RoundFinished, onResult)
	s.scope.On(protocol.AnswerReceived, func(json.RawMessage) {
		s.post(battle.AnswerAcked{})
	})
	s.scope.On(protocol.GameOver, func(raw json.RawMessage) {
		winners, full, err := protocol.DecodeGameOver(raw)
		if err != nil {
			log.Warn("bad game-over payload", zap.Error(err))
			return
		}
		s.post(battle.GameOver{Winners: winners, Full: full})
		s.after(s.opts.Podium, battle.DismissPodium{})
	})
	s.scope.On(protocol.Error, func(raw json.RawMessage) {
		log.Warn("server error", zap.String("message", protocol.DecodeError(raw)))
	})
	s.scope.On(socket.EventDisconnect, func(json.RawMessage) { s.post(battle.Disconnected{}) })
	s.scope.On(socket.EventConnect, func(json.RawMessage) { s.post(battle.Connected{}) })
	if !em.Connected() {
		s.post(battle.Disconnected{})
	}
}

func (s *BattleSession) execute(fx battle.Effect) {
	switch e := fx.(type) {
	case battle.EmitAnswer:
		s.emit(protocol.SubmitAnswer, e.Submission)
	case battle.EmitTimeUp:
		s.emit(protocol.TimeUp, e)
	case battle.StartCountdown:
		s.logger.Debug("countdown started", zap.Int("seconds", e.Seconds))
	case battle.StopCountdown:
	}
}

// Select picks an answer option. The error says why a click was ignored.
func (s *BattleSession) Select(ctx context.Context, optionID string) error {
	return s.send(ctx, battle.SelectOption{OptionID: optionID})
}

// Reset clears the session, as on back navigation.
func (s *BattleSession) Reset(ctx context.Context) error {
	return s.send(ctx, battle.Reset{})
}
