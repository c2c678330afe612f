package battle

import (
	"time"

	"classbattle-client/internal/countdown"
	"classbattle-client/internal/domain"
)

// ControlPhase is the screen the hosting teacher sees.
type ControlPhase string

const (
	ControlInit     ControlPhase = "INIT"
	ControlLobby    ControlPhase = "LOBBY"
	ControlQuestion ControlPhase = "QUESTION"
	ControlResults  ControlPhase = "RESULTS"
	ControlPodium   ControlPhase = "PODIUM_ANIMATION"
	ControlSummary  ControlPhase = "SUMMARY"
)

// ControlState mirrors a battle from the controller side. Unlike the student
// view, most transitions start with a teacher action.
type ControlState struct {
	Phase           ControlPhase       `json:"phase"`
	Disconnected    bool               `json:"disconnected"`
	TeacherID       string             `json:"teacherId"`
	SubjectID       string             `json:"subjectId"`
	Creating        bool               `json:"creating"`
	Room            domain.RoomRef     `json:"room"`
	Students        []domain.Student   `json:"students"`
	QuestionIndex   int                `json:"questionIndex"`
	TotalQuestions  int                `json:"totalQuestions"`
	QuestionSeconds int                `json:"questionSeconds"`
	Remaining       int                `json:"remaining"`
	AnswersReceived int                `json:"answersReceived"`
	TimeUpSent      bool               `json:"timeUpSent"`
	Ending          bool               `json:"ending"`
	Standings       []domain.RankEntry `json:"standings,omitempty"`
	Ranking         *domain.Ranking    `json:"ranking,omitempty"`

	countdown countdown.Countdown
}

// NewControlState is the controller before a room exists.
func NewControlState() ControlState {
	return ControlState{Phase: ControlInit, QuestionIndex: -1}
}

// AllAnswered reports whether every student on the roster answered.
func (s ControlState) AllAnswered() bool {
	return len(s.Students) > 0 && s.AnswersReceived >= len(s.Students)
}

// ApplyControl is the transition function of the controller screen.
func ApplyControl(s ControlState, ev Event) (ControlState, []Effect, error) {
	switch e := ev.(type) {
	case Disconnected:
		s.Disconnected = true
		return s, nil, nil

	case Connected:
		s.Disconnected = false
		return s, nil, nil

	case CreateRoom:
		if s.Phase != ControlInit || s.Creating {
			return s, nil, ErrUnexpectedEvent
		}
		s.Creating = true
		s.TeacherID = e.TeacherID
		s.SubjectID = e.SubjectID
		s.TotalQuestions = e.TotalQuestions
		s.QuestionSeconds = e.QuestionSeconds
		return s, []Effect{EmitCreateRoom{TeacherID: e.TeacherID, SubjectID: e.SubjectID}}, nil

	case CreateFailed:
		if s.Phase != ControlInit || !s.Creating {
			return s, nil, ErrUnexpectedEvent
		}
		s.Creating = false
		return s, nil, nil

	case RoomCreated:
		if s.Phase != ControlInit {
			return s, nil, ErrUnexpectedEvent
		}
		s.Phase = ControlLobby
		s.Creating = false
		s.Room = e.Room
		return s, nil, nil

	case RoomUpdated:
		s.Students = append([]domain.Student(nil), e.Students...)
		return s, nil, nil

	case StartQuestion:
		if s.Disconnected {
			return s, nil, ErrDisconnected
		}
		if s.Phase == ControlInit {
			return s, nil, ErrNoRoom
		}
		if s.Phase != ControlLobby && s.Phase != ControlResults {
			return s, nil, ErrUnexpectedEvent
		}
		if len(s.Students) == 0 {
			return s, nil, ErrNoStudents
		}
		next := s.QuestionIndex + 1
		if s.TotalQuestions > 0 && next >= s.TotalQuestions {
			return s, nil, ErrNoMoreQuestions
		}
		s.Phase = ControlQuestion
		s.QuestionIndex = next
		s.AnswersReceived = 0
		s.TimeUpSent = false
		s.countdown = countdown.Start(time.Duration(s.QuestionSeconds)*time.Second, e.Now)
		s.Remaining = s.countdown.Remaining()
		return s, []Effect{
			EmitStartQuestion{RoomID: s.Room.Code, QuestionIndex: next},
			StartCountdown{Seconds: s.Remaining},
		}, nil

	case AnswerReceived:
		if s.Phase != ControlQuestion {
			return s, nil, nil
		}
		if e.Count > 0 {
			s.AnswersReceived = e.Count
		} else {
			s.AnswersReceived++
		}
		return s, nil, nil

	case Tick:
		if s.Phase != ControlQuestion {
			return s, nil, nil
		}
		s.Remaining = s.countdown.Remaining()
		if s.Remaining > 0 || s.TimeUpSent {
			return s, nil, nil
		}
		s.TimeUpSent = true
		return s, []Effect{EmitTimeUp{RoomID: s.Room.Code, QuestionIndex: s.QuestionIndex}}, nil

	case RoundFinished:
		switch s.Phase {
		case ControlQuestion:
			s.Phase = ControlResults
			s.Remaining = 0
			s.Standings = append([]domain.RankEntry(nil), e.Standings...)
			return s, []Effect{StopCountdown{}}, nil
		case ControlResults:
			s.Standings = append([]domain.RankEntry(nil), e.Standings...)
			return s, nil, nil
		}
		return s, nil, ErrUnexpectedEvent

	case EndBattle:
		if s.Phase != ControlLobby && s.Phase != ControlQuestion && s.Phase != ControlResults {
			return s, nil, ErrUnexpectedEvent
		}
		if s.Ending {
			return s, nil, nil
		}
		s.Ending = true
		return s, []Effect{StopCountdown{}, EmitEndBattle{RoomID: s.Room.Code}}, nil

	case GameOver:
		if s.Ranking != nil {
			return s, nil, ErrRankingFinal
		}
		ranking := BuildRanking(e.Winners, e.Full)
		s.Phase = ControlPodium
		s.Ranking = &ranking
		s.Remaining = 0
		return s, []Effect{StopCountdown{}}, nil

	case PodiumDone:
		if s.Phase != ControlPodium {
			return s, nil, ErrUnexpectedEvent
		}
		s.Phase = ControlSummary
		return s, nil, nil

	default:
		return s, nil, ErrUnsupportedEvent
	}
}
