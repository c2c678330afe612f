package allforall

import (
	"time"

	"classbattle-client/internal/countdown"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
)

// Phase is the screen a student sees.
type Phase string

const (
	PhaseLobby    Phase = "LOBBY"
	PhasePlaying  Phase = "PLAYING"
	PhaseFeedback Phase = "FEEDBACK"
)

// DefaultFeedback is how long the feedback screen stays up.
const DefaultFeedback = 2 * time.Second

// Player identifies the local student.
type Player struct {
	RoomID    string `json:"roomId"`
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
}

// Feedback is the result shown after a round. Provisional results come from
// the local check and are replaced when the server scores the round.
type Feedback struct {
	Correct     bool   `json:"correct"`
	Provisional bool   `json:"provisional"`
	TimedOut    bool   `json:"timedOut"`
	Expected    string `json:"expected"`
	Points      int    `json:"points,omitempty"`
}

// State is the whole student view.
type State struct {
	Player       Player              `json:"player"`
	Phase        Phase               `json:"phase"`
	Disconnected bool                `json:"disconnected"`
	Challenge    *protocol.Challenge `json:"challenge,omitempty"`
	Remaining    int                 `json:"remaining"`
	Pressed      string              `json:"pressed,omitempty"`
	Feedback     *Feedback           `json:"feedback,omitempty"`
	Score        int                 `json:"score"`
	Players      []domain.Student    `json:"players,omitempty"`

	feedbackFor time.Duration
	now         func() time.Time
	round       countdown.Countdown
	feedback    countdown.Countdown
}

// NewState starts a student in the lobby. feedback <= 0 uses DefaultFeedback.
func NewState(p Player, feedback time.Duration) State {
	if feedback <= 0 {
		feedback = DefaultFeedback
	}
	return State{Player: p, Phase: PhaseLobby, feedbackFor: feedback}
}

// Apply is the transition function of the student screen.
func Apply(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case Disconnected:
		s.Disconnected = true
		return s, nil, nil

	case Connected:
		s.Disconnected = false
		return s, nil, nil

	case Reset:
		return NewState(s.Player, s.feedbackFor), []Effect{StopCountdown{}}, nil

	case PlayersUpdate:
		s.Players = append([]domain.Student(nil), e.Players...)
		return s, nil, nil

	case StartChallenge:
		if s.Phase == PhasePlaying {
			return s, nil, ErrUnexpectedEvent
		}
		c := e.Challenge
		next := s
		next.Phase = PhasePlaying
		next.Challenge = &c
		next.Pressed = ""
		next.Feedback = nil
		next.now = e.Now
		next.round = countdown.Start(c.Duration, e.Now)
		next.feedback = countdown.Countdown{}
		next.Remaining = next.round.Remaining()
		return next, []Effect{StartCountdown{Seconds: next.Remaining}}, nil

	case Press:
		if s.Disconnected {
			return s, nil, ErrDisconnected
		}
		if s.Phase == PhaseFeedback && s.Pressed != "" {
			return s, nil, ErrAlreadyPressed
		}
		if s.Phase != PhasePlaying || s.Challenge == nil {
			return s, nil, ErrNotPlaying
		}
		correct := IsCorrect(*s.Challenge, e.Value)
		next := s.enterFeedback(Feedback{
			Correct:     correct,
			Provisional: true,
			Expected:    Expected(*s.Challenge),
		})
		next.Pressed = e.Value
		submit := EmitSubmit{
			RoomID:    s.Player.RoomID,
			StudentID: s.Player.StudentID,
			Name:      s.Player.Name,
			Answer:    e.Value,
			Correct:   correct,
			RoundID:   s.Challenge.RoundID,
		}
		return next, []Effect{StopCountdown{}, submit}, nil

	case Tick:
		switch s.Phase {
		case PhasePlaying:
			s.Remaining = s.round.Remaining()
			if s.Remaining > 0 || s.Challenge == nil {
				return s, nil, nil
			}
			next := s.enterFeedback(Feedback{TimedOut: true, Provisional: true, Expected: Expected(*s.Challenge)})
			return next, []Effect{StopCountdown{}}, nil
		case PhaseFeedback:
			if !s.feedback.Expired() {
				return s, nil, nil
			}
			s.Phase = PhaseLobby
			s.Challenge = nil
			s.Pressed = ""
			return s, nil, nil
		}
		return s, nil, nil

	case ServerResult:
		res := e.Result
		s.Score = res.TotalScore
		if s.Phase != PhaseFeedback || s.Feedback == nil {
			return s, nil, nil
		}
		fb := *s.Feedback
		fb.Correct = res.Correct
		fb.Points = res.Points
		fb.Provisional = false
		s.Feedback = &fb
		return s, nil, nil

	default:
		return s, nil, ErrUnsupportedEvent
	}
}

func (s State) enterFeedback(fb Feedback) State {
	s.Phase = PhaseFeedback
	s.Feedback = &fb
	s.Remaining = 0
	s.feedback = countdown.Start(s.feedbackFor, s.now)
	return s
}
