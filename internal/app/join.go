package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"classbattle-client/internal/config"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// JoinResult is what the join screen shows.
type JoinResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// JoinSpec describes how one game type joins a room.
type JoinSpec struct {
	Emit    string
	Confirm []string
	Timeout time.Duration
}

// JoinSpecs returns the per-game join exchange.
func JoinSpecs(cfg config.Config) map[domain.GameType]JoinSpec {
	battle := config.TTLDuration(cfg.Join.BattleTimeout, 5*time.Second)
	allForAll := config.TTLDuration(cfg.Join.AllForAllTimeout, 10*time.Second)
	return map[domain.GameType]JoinSpec{
		domain.GameBattle: {
			Emit:    protocol.JoinRoom,
			Confirm: []string{protocol.RoomUpdate},
			Timeout: battle,
		},
		domain.GameAllForAll: {
			Emit:    protocol.JoinGame,
			Confirm: []string{protocol.AllForAllUpdate, protocol.PlayersUpdate},
			Timeout: allForAll,
		},
	}
}

// Joiner runs the join handshake against the shared socket.
type Joiner struct {
	em     socket.Emitter
	specs  map[domain.GameType]JoinSpec
	logger *zap.Logger
}

func NewJoiner(em socket.Emitter, specs map[domain.GameType]JoinSpec, logger *zap.Logger) *Joiner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Joiner{em: em, specs: specs, logger: logger}
}

type joinPayload struct {
	RoomID      string `json:"roomId"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Name        string `json:"name"`
}

// Join resolves exactly once with success, a server error, a timeout or a
// cancellation. It never returns an error; failures are part of the result.
func (j *Joiner) Join(ctx context.Context, req domain.JoinRequest) JoinResult {
	req.Code = domain.NormalizeCode(req.Code)
	req.StudentName = strings.TrimSpace(req.StudentName)
	if req.Game == "" {
		req.Game = domain.GameBattle
	}
	if err := domain.Validate(req); err != nil {
		return JoinResult{Message: validationMessage(err)}
	}
	spec, ok := j.specs[req.Game]
	if !ok {
		return JoinResult{Message: domain.MsgJoinFailed}
	}

	log := j.logger.With(zap.String("room", req.Code), zap.String("game", string(req.Game)))
	listen := append([]string{protocol.Error}, spec.Confirm...)
	payload := joinPayload{RoomID: req.Code, StudentID: req.StudentID, StudentName: req.StudentName, Name: req.StudentName}

	_, err := await(ctx, j.em, spec.Emit, payload, listen, func(name string, raw json.RawMessage) (bool, error) {
		if name == protocol.Error {
			msg := protocol.DecodeError(raw)
			if msg == "" {
				msg = domain.MsgJoinFailed
			}
			return true, &RejectedError{Event: name, Message: msg}
		}
		state, err := protocol.DecodeRoomState(raw)
		if err != nil {
			log.Debug("ignoring undecodable room payload", zap.Error(err))
			return false, nil
		}
		return confirmsJoin(state, req), nil
	}, spec.Timeout)

	var rejected *RejectedError
	switch {
	case err == nil:
		log.Info("joined room")
		return JoinResult{Success: true}
	case errors.As(err, &rejected):
		log.Warn("join rejected", zap.String("reason", rejected.Message))
		return JoinResult{Message: rejected.Message}
	case errors.Is(err, domain.ErrTimeout):
		log.Warn("join timed out", zap.Duration("timeout", spec.Timeout))
		return JoinResult{Message: domain.MsgJoinTimeout}
	case errors.Is(err, domain.ErrNotConnected):
		return JoinResult{Message: domain.MsgDisconnected}
	default:
		log.Warn("join aborted", zap.Error(err))
		return JoinResult{Message: domain.MsgJoinFailed}
	}
}

// confirmsJoin accepts a roster for this room that lists the student, by id
// or, for entries without ids, by name.
func confirmsJoin(state protocol.RoomState, req domain.JoinRequest) bool {
	if !state.HasRoster {
		return false
	}
	if state.RoomID != "" && state.RoomID != req.Code {
		return false
	}
	if state.Contains(req.StudentID) {
		return true
	}
	for _, s := range state.Students {
		if s.ID == "" && strings.EqualFold(strings.TrimSpace(s.Name), req.StudentName) {
			return true
		}
	}
	return false
}

func validationMessage(err error) string {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return domain.MsgJoinFailed
	}
	if msg, ok := verr.Fields["JoinRequest.Code"]; ok {
		if msg == domain.MsgCodeRequired {
			return msg
		}
		return "Código inválido: " + msg
	}
	for _, msg := range verr.Fields {
		return msg
	}
	return domain.MsgJoinFailed
}
