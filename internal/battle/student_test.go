package battle

import (
	"testing"
	"time"

	"classbattle-client/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func sampleQuestion(seconds int) domain.QuestionSnapshot {
	return domain.QuestionSnapshot{
		Question: domain.Question{
			ID:   "q1",
			Text: "¿Cuánto es 2 + 2?",
			Options: []domain.Option{
				{ID: "opt1", Text: "3"},
				{ID: "opt2", Text: "4"},
			},
		},
		Duration: time.Duration(seconds) * time.Second,
		Index:    0,
		Total:    3,
	}
}

func player() Player {
	return Player{RoomID: "AB12", StudentID: "s1", Name: "Ana"}
}

func TestNewQuestionStartsCountdown(t *testing.T) {
	clock := newClock()
	s, effects, err := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(20), Now: clock.now})
	require.NoError(t, err)
	require.Equal(t, PhaseQuestion, s.Phase)
	require.Equal(t, 20, s.Remaining)
	require.True(t, s.Transition)
	require.Equal(t, []Effect{StartCountdown{Seconds: 20}}, effects)
}

func TestSelectOptionLocksAndEmitsOnce(t *testing.T) {
	clock := newClock()
	s, _, err := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(20), Now: clock.now})
	require.NoError(t, err)

	s, effects, err := Apply(s, SelectOption{OptionID: "opt2"})
	require.NoError(t, err)
	require.Equal(t, PhaseLocked, s.Phase)
	require.Equal(t, []Effect{EmitAnswer{Submission: domain.AnswerSubmission{
		RoomID: "AB12", StudentID: "s1", QuestionID: "q1", OptionID: "opt2",
	}}}, effects)

	again, effects, err := Apply(s, SelectOption{OptionID: "opt1"})
	require.ErrorIs(t, err, ErrAlreadyAnswered)
	require.Empty(t, effects)
	require.Equal(t, "opt2", again.Selected)
}

func TestSelectOptionGuards(t *testing.T) {
	_, effects, err := Apply(NewState(player()), SelectOption{OptionID: "opt1"})
	require.ErrorIs(t, err, ErrNotAcceptingAnswers)
	require.Empty(t, effects)

	clock := newClock()
	s, _, _ := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(20), Now: clock.now})
	_, _, err = Apply(s, SelectOption{OptionID: "nope"})
	require.ErrorIs(t, err, ErrUnknownOption)

	s, _, _ = Apply(s, Disconnected{})
	_, effects, err = Apply(s, SelectOption{OptionID: "opt1"})
	require.ErrorIs(t, err, ErrDisconnected)
	require.Empty(t, effects)
}

func TestCountdownNeverNegativeAndTimeUpIsAdvisory(t *testing.T) {
	clock := newClock()
	s, _, _ := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(2), Now: clock.now})

	clock.advance(time.Second)
	s, effects, err := Apply(s, Tick{})
	require.NoError(t, err)
	require.Equal(t, 1, s.Remaining)
	require.Empty(t, effects)

	clock.advance(5 * time.Second)
	s, effects, err = Apply(s, Tick{})
	require.NoError(t, err)
	require.Equal(t, 0, s.Remaining)
	require.Equal(t, PhaseQuestion, s.Phase, "time-up must not force a local transition")
	require.Equal(t, []Effect{EmitTimeUp{RoomID: "AB12", QuestionID: "q1", StudentID: "s1"}}, effects)

	s, effects, _ = Apply(s, Tick{})
	require.Equal(t, 0, s.Remaining)
	require.Empty(t, effects, "time-up is sent once per round")
}

func TestLockedStudentDoesNotSendTimeUp(t *testing.T) {
	clock := newClock()
	s, _, _ := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(1), Now: clock.now})
	s, _, _ = Apply(s, SelectOption{OptionID: "opt1"})
	clock.advance(3 * time.Second)
	s, effects, _ := Apply(s, Tick{})
	require.Equal(t, 0, s.Remaining)
	require.Empty(t, effects)
}

func TestNewQuestionResetsCountdownEachRound(t *testing.T) {
	clock := newClock()
	s := NewState(player())
	for _, secs := range []int{10, 30, 5} {
		var err error
		s, _, err = Apply(s, NewQuestion{Snapshot: sampleQuestion(secs), Now: clock.now})
		require.NoError(t, err)
		require.Equal(t, secs, s.Remaining)
		require.Empty(t, s.Selected)
		clock.advance(time.Duration(secs+3) * time.Second)
		s, _, _ = Apply(s, Tick{})
		require.Equal(t, 0, s.Remaining)
	}
}

func TestServerDeadlineWins(t *testing.T) {
	clock := newClock()
	snap := sampleQuestion(20)
	snap.EndsAt = clock.t.Add(7 * time.Second)
	s, _, err := Apply(NewState(player()), NewQuestion{Snapshot: snap, Now: clock.now})
	require.NoError(t, err)
	require.Equal(t, 7, s.Remaining)
}

func TestRoundResultThenNextQuestion(t *testing.T) {
	clock := newClock()
	s, _, _ := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(20), Now: clock.now})
	s, _, _ = Apply(s, SelectOption{OptionID: "opt2"})
	s, _, _ = Apply(s, AnswerAcked{})
	require.True(t, s.Acknowledged)

	s, effects, err := Apply(s, RoundResult{Result: domain.RoundResult{Correct: true, Points: 10, TotalScore: 10}})
	require.NoError(t, err)
	require.Equal(t, PhaseFeedback, s.Phase)
	require.False(t, s.Transition)
	require.Equal(t, 10, s.Score)
	require.Equal(t, []Effect{StopCountdown{}}, effects)

	_, _, err = Apply(s, RoundResult{})
	require.ErrorIs(t, err, ErrUnexpectedEvent)

	next := sampleQuestion(15)
	next.Question.ID = "q2"
	s, _, err = Apply(s, NewQuestion{Snapshot: next, Now: clock.now})
	require.NoError(t, err)
	require.Equal(t, PhaseQuestion, s.Phase)
	require.Nil(t, s.Feedback)
	require.Equal(t, 10, s.Score)
	require.False(t, s.Acknowledged)
}

func TestGameOverPodiumAndOutcome(t *testing.T) {
	winners := []domain.RankEntry{
		{Name: "Luis", Score: 50},
		{Name: "Eva", Score: 40},
		{Name: "Ana", Score: 30},
		{Name: "Tom", Score: 20},
	}

	s, _, err := Apply(NewState(player()), GameOver{Winners: winners})
	require.NoError(t, err)
	require.Equal(t, PhasePodium, s.Phase)
	require.Len(t, s.Ranking.Podium, 3)
	require.Equal(t, "Luis", s.Ranking.Podium[0].Name)
	require.Len(t, s.Ranking.Full, 4)
	require.True(t, s.InPodium)

	_, _, err = Apply(s, GameOver{Winners: winners[:1]})
	require.ErrorIs(t, err, ErrRankingFinal)

	s, _, err = Apply(s, DismissPodium{})
	require.NoError(t, err)
	require.Equal(t, PhaseFinal, s.Phase)
	require.Equal(t, OutcomeWinner, s.Outcome)

	tom := NewState(Player{RoomID: "AB12", StudentID: "s4", Name: "Tom"})
	tom, _, _ = Apply(tom, GameOver{Winners: winners})
	require.False(t, tom.InPodium)
	tom, _, _ = Apply(tom, DismissPodium{})
	require.Equal(t, OutcomeLoser, tom.Outcome)
}

func TestNoQuestionsAfterGameOver(t *testing.T) {
	clock := newClock()
	s, _, _ := Apply(NewState(player()), GameOver{Winners: []domain.RankEntry{{Name: "Ana"}}})
	_, _, err := Apply(s, NewQuestion{Snapshot: sampleQuestion(10), Now: clock.now})
	require.ErrorIs(t, err, ErrUnexpectedEvent)
}

func TestDisconnectOverlayKeepsPhase(t *testing.T) {
	clock := newClock()
	s, _, _ := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(20), Now: clock.now})
	s, _, _ = Apply(s, SelectOption{OptionID: "opt1"})

	s, _, _ = Apply(s, Disconnected{})
	require.True(t, s.Disconnected)
	require.Equal(t, PhaseLocked, s.Phase)

	s, _, _ = Apply(s, Connected{})
	require.False(t, s.Disconnected)
	require.Equal(t, PhaseLocked, s.Phase)
}

func TestResetClearsEphemeralState(t *testing.T) {
	clock := newClock()
	s, _, _ := Apply(NewState(player()), NewQuestion{Snapshot: sampleQuestion(20), Now: clock.now})
	s, effects, err := Apply(s, Reset{})
	require.NoError(t, err)
	require.Equal(t, NewState(player()), s)
	require.Equal(t, []Effect{StopCountdown{}}, effects)
}
