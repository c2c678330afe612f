package allforall

import "classbattle-client/internal/domain"

// HostPhase is the teacher's All-for-All screen.
type HostPhase string

const (
	HostClosed HostPhase = "CLOSED"
	HostOpen   HostPhase = "OPEN"
	HostRound  HostPhase = "ROUND"
)

// HostState is the All-for-All control view.
type HostState struct {
	Phase        HostPhase        `json:"phase"`
	Disconnected bool             `json:"disconnected"`
	TeacherID    string           `json:"teacherId"`
	Opening      bool             `json:"opening"`
	Room         domain.RoomRef   `json:"room"`
	Players      []domain.Student `json:"players"`
	Rounds       int              `json:"rounds"`
}

// NewHostState is the host before the room opens.
func NewHostState() HostState {
	return HostState{Phase: HostClosed}
}

// ApplyHost is the transition function of the host screen.
func ApplyHost(s HostState, ev Event) (HostState, []Effect, error) {
	switch e := ev.(type) {
	case Disconnected:
		s.Disconnected = true
		return s, nil, nil

	case Connected:
		s.Disconnected = false
		return s, nil, nil

	case OpenRoom:
		if s.Phase != HostClosed || s.Opening {
			return s, nil, ErrUnexpectedEvent
		}
		s.Opening = true
		s.TeacherID = e.TeacherID
		return s, []Effect{EmitOpenRoom{TeacherID: e.TeacherID}}, nil

	case OpenFailed:
		if s.Phase != HostClosed || !s.Opening {
			return s, nil, ErrUnexpectedEvent
		}
		s.Opening = false
		return s, nil, nil

	case RoomOpened:
		if s.Phase != HostClosed {
			return s, nil, ErrUnexpectedEvent
		}
		s.Phase = HostOpen
		s.Opening = false
		s.Room = e.Room
		return s, []Effect{EmitCreateGame{RoomID: e.Room.Code}}, nil

	case PlayersUpdate:
		s.Players = append([]domain.Student(nil), e.Players...)
		return s, nil, nil

	case StartRound:
		if s.Disconnected {
			return s, nil, ErrDisconnected
		}
		if s.Phase == HostClosed {
			return s, nil, ErrNoRoom
		}
		if s.Phase != HostOpen {
			return s, nil, ErrUnexpectedEvent
		}
		if len(s.Players) == 0 {
			return s, nil, ErrNoPlayers
		}
		s.Phase = HostRound
		s.Rounds++
		return s, []Effect{EmitStartRound{RoomID: s.Room.Code}}, nil

	case ResetRound:
		if s.Phase != HostRound {
			return s, nil, ErrUnexpectedEvent
		}
		s.Phase = HostOpen
		return s, []Effect{EmitResetGame{RoomID: s.Room.Code}}, nil

	case Tick:
		return s, nil, nil

	default:
		return s, nil, ErrUnsupportedEvent
	}
}
