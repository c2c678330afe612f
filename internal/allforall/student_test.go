package allforall

import (
	"testing"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func challenge(mode protocol.ChallengeMode) protocol.Challenge {
	return protocol.Challenge{
		Word:     "ROJO",
		Color:    "azul",
		Mode:     mode,
		Options:  []string{"rojo", "azul", "verde"},
		Duration: 5 * time.Second,
		RoundID:  "r1",
	}
}

func playing(t *testing.T, mode protocol.ChallengeMode) (State, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewState(Player{RoomID: "AB12", StudentID: "s1", Name: "Ana"}, time.Second)
	s, effects, err := Apply(s, StartChallenge{Challenge: challenge(mode), Now: clock.now})
	require.NoError(t, err)
	require.Equal(t, PhasePlaying, s.Phase)
	require.Equal(t, []Effect{StartCountdown{Seconds: 5}}, effects)
	return s, clock
}

func TestExpectedFollowsMode(t *testing.T) {
	require.Equal(t, "azul", Expected(challenge(protocol.ModeColor)))
	require.Equal(t, "ROJO", Expected(challenge(protocol.ModeText)))
	require.True(t, IsCorrect(challenge(protocol.ModeText), " rojo "))
	require.False(t, IsCorrect(challenge(protocol.ModeColor), "rojo"))
	require.False(t, IsCorrect(challenge(protocol.ModeColor), ""))
}

func TestPressGivesProvisionalFeedbackAndSubmits(t *testing.T) {
	s, _ := playing(t, protocol.ModeColor)

	s, effects, err := Apply(s, Press{Value: "Azul"})
	require.NoError(t, err)
	require.Equal(t, PhaseFeedback, s.Phase)
	require.True(t, s.Feedback.Correct)
	require.True(t, s.Feedback.Provisional)
	require.Equal(t, []Effect{StopCountdown{}, EmitSubmit{
		RoomID: "AB12", StudentID: "s1", Name: "Ana", Answer: "Azul", Correct: true, RoundID: "r1",
	}}, effects)

	_, effects, err = Apply(s, Press{Value: "rojo"})
	require.ErrorIs(t, err, ErrAlreadyPressed)
	require.Empty(t, effects)
}

func TestServerResultOverridesLocalCheck(t *testing.T) {
	s, _ := playing(t, protocol.ModeColor)
	s, _, _ = Apply(s, Press{Value: "azul"})

	s, _, err := Apply(s, ServerResult{Result: domain.RoundResult{Correct: false, Points: 0, TotalScore: 4}})
	require.NoError(t, err)
	require.False(t, s.Feedback.Correct)
	require.False(t, s.Feedback.Provisional)
	require.Equal(t, 4, s.Score)
}

func TestTimeoutThenBackToLobby(t *testing.T) {
	s, clock := playing(t, protocol.ModeText)

	clock.advance(6 * time.Second)
	s, effects, err := Apply(s, Tick{})
	require.NoError(t, err)
	require.Equal(t, PhaseFeedback, s.Phase)
	require.True(t, s.Feedback.TimedOut)
	require.Equal(t, "ROJO", s.Feedback.Expected)
	require.Equal(t, []Effect{StopCountdown{}}, effects)

	_, _, err = Apply(s, Press{Value: "rojo"})
	require.ErrorIs(t, err, ErrNotPlaying)

	s, _, _ = Apply(s, Tick{})
	require.Equal(t, PhaseFeedback, s.Phase)

	clock.advance(time.Second)
	s, _, _ = Apply(s, Tick{})
	require.Equal(t, PhaseLobby, s.Phase)
	require.Nil(t, s.Challenge)
	require.NotNil(t, s.Feedback, "last result stays visible in the lobby")
}

func TestPressGuards(t *testing.T) {
	s := NewState(Player{StudentID: "s1"}, 0)
	_, _, err := Apply(s, Press{Value: "rojo"})
	require.ErrorIs(t, err, ErrNotPlaying)

	s, _ = playing(t, protocol.ModeColor)
	s, _, _ = Apply(s, Disconnected{})
	_, effects, err := Apply(s, Press{Value: "azul"})
	require.ErrorIs(t, err, ErrDisconnected)
	require.Empty(t, effects)

	s, _, _ = Apply(s, Connected{})
	require.Equal(t, PhasePlaying, s.Phase)

	_, _, err = Apply(s, StartChallenge{Challenge: challenge(protocol.ModeColor)})
	require.ErrorIs(t, err, ErrUnexpectedEvent)
}
