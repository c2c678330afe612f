package battle

import (
	"classbattle-client/internal/countdown"
	"classbattle-client/internal/domain"
)

// Phase is the screen a student sees during a battle.
type Phase string

const (
	PhaseWaiting  Phase = "WAITING"
	PhaseQuestion Phase = "QUESTION"
	PhaseLocked   Phase = "LOCKED"
	PhaseFeedback Phase = "FEEDBACK"
	PhasePodium   Phase = "PODIUM"
	PhaseFinal    Phase = "FINAL_RESULT"
)

// Outcome is the final screen branch.
type Outcome string

const (
	OutcomeWinner Outcome = "WINNER"
	OutcomeLoser  Outcome = "LOSER"
)

// Player identifies the local student in a room.
type Player struct {
	RoomID    string `json:"roomId"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// State is the whole student view. Disconnected is an overlay: Phase keeps
// the screen underneath it.
type State struct {
	Player       Player                   `json:"player"`
	Phase        Phase                    `json:"phase"`
	Disconnected bool                     `json:"disconnected"`
	Transition   bool                     `json:"transition"`
	Question     *domain.QuestionSnapshot `json:"question,omitempty"`
	Remaining    int                      `json:"remaining"`
	Selected     string                   `json:"selected,omitempty"`
	Acknowledged bool                     `json:"acknowledged"`
	TimeUpSent   bool                     `json:"timeUpSent"`
	Feedback     *domain.RoundResult      `json:"feedback,omitempty"`
	Score        int                      `json:"score"`
	Ranking      *domain.Ranking          `json:"ranking,omitempty"`
	InPodium     bool                     `json:"inPodium"`
	Outcome      Outcome                  `json:"outcome,omitempty"`

	countdown countdown.Countdown
}

// NewState starts a student in the waiting room.
func NewState(p Player) State {
	return State{Player: p, Phase: PhaseWaiting}
}

// Apply is the single transition function of the student screen. Rejected
// events return the state unchanged together with the reason.
func Apply(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Disconnected:
		s.Disconnected = true
		return s, nil, nil

	case Connected:
		s.Disconnected = false
		return s, nil, nil

	case Reset:
		return NewState(s.Player), []Effect{StopCountdown{}}, nil

	case NewQuestion:
		if s.Phase == PhasePodium || s.Phase == PhaseFinal {
			return s, nil, ErrUnexpectedEvent
		}
		snap := e.Snapshot
		next := s
		next.Phase = PhaseQuestion
		next.Question = &snap
		next.Selected = ""
		next.Acknowledged = false
		next.TimeUpSent = false
		next.Feedback = nil
		next.Transition = true
		if !snap.EndsAt.IsZero() {
			next.countdown = countdown.Until(snap.EndsAt, e.Now)
		} else {
			next.countdown = countdown.Start(snap.Duration, e.Now)
		}
		next.Remaining = next.countdown.Remaining()
		return next, []Effect{StartCountdown{Seconds: next.Remaining}}, nil

	case SelectOption:
		if s.Disconnected {
			return s, nil, ErrDisconnected
		}
		if s.Phase == PhaseLocked {
			return s, nil, ErrAlreadyAnswered
		}
		if s.Phase != PhaseQuestion || s.Question == nil {
			return s, nil, ErrNotAcceptingAnswers
		}
		if !s.Question.Question.HasOption(e.OptionID) {
			return s, nil, ErrUnknownOption
		}
		next := s
		next.Phase = PhaseLocked
		next.Selected = e.OptionID
		sub := domain.AnswerSubmission{
			RoomID:     s.Player.RoomID,
			StudentID:  s.Player.StudentID,
			QuestionID: s.Question.Question.ID,
			OptionID:   e.OptionID,
		}
		return next, []Effect{EmitAnswer{Submission: sub}}, nil

	case AnswerAcked:
		if s.Phase == PhaseLocked {
			s.Acknowledged = true
		}
		return s, nil, nil

	case Tick:
		if s.Phase != PhaseQuestion && s.Phase != PhaseLocked {
			return s, nil, nil
		}
		s.Remaining = s.countdown.Remaining()
		if s.Remaining > 0 || s.Phase != PhaseQuestion || s.TimeUpSent {
			return s, nil, nil
		}
		// advisory only: the server decides when the round ends
		s.TimeUpSent = true
		up := EmitTimeUp{RoomID: s.Player.RoomID, StudentID: s.Player.StudentID}
		if s.Question != nil {
			up.QuestionID = s.Question.Question.ID
			up.QuestionIndex = s.Question.Index
		}
		return s, []Effect{up}, nil

	case RoundResult:
		if s.Phase != PhaseQuestion && s.Phase != PhaseLocked {
			return s, nil, ErrUnexpectedEvent
		}
		res := e.Result
		next := s
		next.Phase = PhaseFeedback
		next.Feedback = &res
		next.Score = res.TotalScore
		next.Transition = false
		next.Remaining = 0
		return next, []Effect{StopCountdown{}}, nil

	case GameOver:
		if s.Ranking != nil {
			return s, nil, ErrRankingFinal
		}
		ranking := BuildRanking(e.Winners, e.Full)
		next := s
		next.Phase = PhasePodium
		next.Ranking = &ranking
		next.InPodium = InTopThree(e.Winners, s.Player.Name)
		next.Transition = false
		next.Remaining = 0
		return next, []Effect{StopCountdown{}}, nil

	case DismissPodium:
		if s.Phase != PhasePodium {
			return s, nil, ErrUnexpectedEvent
		}
		s.Phase = PhaseFinal
		s.Outcome = OutcomeLoser
		if s.InPodium {
			s.Outcome = OutcomeWinner
		}
		return s, nil, nil

	default:
		return s, nil, ErrUnsupportedEvent
	}
}
