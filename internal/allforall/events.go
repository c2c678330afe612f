// Package allforall holds the Stroop color mini-game: a student machine that
// plays one round at a time and a host machine that opens the room and
// starts rounds.
package allforall

import (
	"errors"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
)

var (
	ErrNotPlaying       = errors.New("no challenge in progress")
	ErrAlreadyPressed   = errors.New("answer already submitted this round")
	ErrUnexpectedEvent  = errors.New("event not valid in current phase")
	ErrUnsupportedEvent = errors.New("unsupported event")
	ErrDisconnected     = errors.New("interaction blocked while disconnected")
	ErrNoRoom           = errors.New("room not open")
	ErrNoPlayers        = errors.New("no players in room")
)

// Event is anything a machine reacts to.
type Event interface{ isEvent() }

// Student events.
type (
	StartChallenge struct {
		Challenge protocol.Challenge
		Now       func() time.Time
	}
	Press        struct{ Value string }
	ServerResult struct{ Result domain.RoundResult }
	Reset        struct{}
)

// Host events.
type (
	OpenRoom      struct{ TeacherID string }
	RoomOpened    struct{ Room domain.RoomRef }
	OpenFailed    struct{}
	StartRound    struct{}
	ResetRound    struct{}
	PlayersUpdate struct{ Players []domain.Student }
)

// Shared events.
type (
	Tick         struct{}
	Disconnected struct{}
	Connected    struct{}
)

func (StartChallenge) isEvent() {}
func (Press) isEvent()          {}
func (ServerResult) isEvent()   {}
func (Reset) isEvent()          {}
func (OpenRoom) isEvent()       {}
func (RoomOpened) isEvent()     {}
func (OpenFailed) isEvent()     {}
func (StartRound) isEvent()     {}
func (ResetRound) isEvent()     {}
func (PlayersUpdate) isEvent()  {}
func (Tick) isEvent()           {}
func (Disconnected) isEvent()   {}
func (Connected) isEvent()      {}

// Effect is work the runner performs after a transition.
type Effect interface{ isEffect() }

type (
	// EmitSubmit is fire and forget; the backend scores it on its own.
	EmitSubmit struct {
		RoomID    string `json:"roomId"`
		StudentID string `json:"studentId"`
		Name      string `json:"name,omitempty"`
		Answer    string `json:"answer"`
		Correct   bool   `json:"correct"`
		RoundID   string `json:"roundId,omitempty"`
	}
	EmitOpenRoom struct {
		TeacherID string `json:"teacherId"`
	}
	EmitCreateGame struct {
		RoomID string `json:"roomId"`
	}
	EmitStartRound struct {
		RoomID string `json:"roomId"`
	}
	EmitResetGame struct {
		RoomID string `json:"roomId"`
	}
	StartCountdown struct{ Seconds int }
	StopCountdown  struct{}
)

func (EmitSubmit) isEffect()     {}
func (EmitOpenRoom) isEffect()   {}
func (EmitCreateGame) isEffect() {}
func (EmitStartRound) isEffect() {}
func (EmitResetGame) isEffect()  {}
func (StartCountdown) isEffect() {}
func (StopCountdown) isEffect()  {}
