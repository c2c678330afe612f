package battle

import (
	"testing"
	"time"

	"classbattle-client/internal/domain"
	"github.com/stretchr/testify/require"
)

func lobbyWithStudents(t *testing.T, total int) ControlState {
	t.Helper()
	s, effects, err := ApplyControl(NewControlState(), CreateRoom{TeacherID: "t1", SubjectID: "sub1", TotalQuestions: total, QuestionSeconds: 10})
	require.NoError(t, err)
	require.Equal(t, []Effect{EmitCreateRoom{TeacherID: "t1", SubjectID: "sub1"}}, effects)

	_, _, err = ApplyControl(s, CreateRoom{TeacherID: "t1"})
	require.ErrorIs(t, err, ErrUnexpectedEvent)

	s, _, err = ApplyControl(s, RoomCreated{Room: domain.RoomRef{Code: "AB12"}})
	require.NoError(t, err)
	require.Equal(t, ControlLobby, s.Phase)

	s, _, _ = ApplyControl(s, RoomUpdated{Students: []domain.Student{{ID: "s1", Name: "Ana"}, {ID: "s2", Name: "Luis"}}})
	return s
}

func TestControllerLoop(t *testing.T) {
	clock := newClock()
	s := lobbyWithStudents(t, 2)

	s, effects, err := ApplyControl(s, StartQuestion{Now: clock.now})
	require.NoError(t, err)
	require.Equal(t, ControlQuestion, s.Phase)
	require.Equal(t, 0, s.QuestionIndex)
	require.Equal(t, []Effect{
		EmitStartQuestion{RoomID: "AB12", QuestionIndex: 0},
		StartCountdown{Seconds: 10},
	}, effects)

	s, _, _ = ApplyControl(s, AnswerReceived{})
	s, _, _ = ApplyControl(s, AnswerReceived{})
	require.True(t, s.AllAnswered())

	s, effects, err = ApplyControl(s, RoundFinished{Standings: []domain.RankEntry{{Name: "Ana", Score: 10}}})
	require.NoError(t, err)
	require.Equal(t, ControlResults, s.Phase)
	require.Equal(t, []Effect{StopCountdown{}}, effects)

	s, _, err = ApplyControl(s, StartQuestion{Now: clock.now})
	require.NoError(t, err)
	require.Equal(t, 1, s.QuestionIndex)
	require.Zero(t, s.AnswersReceived)

	s, _, _ = ApplyControl(s, RoundFinished{})
	_, _, err = ApplyControl(s, StartQuestion{Now: clock.now})
	require.ErrorIs(t, err, ErrNoMoreQuestions)

	s, effects, err = ApplyControl(s, EndBattle{})
	require.NoError(t, err)
	require.Equal(t, []Effect{StopCountdown{}, EmitEndBattle{RoomID: "AB12"}}, effects)
	_, effects, _ = ApplyControl(s, EndBattle{})
	require.Empty(t, effects)

	s, _, err = ApplyControl(s, GameOver{Winners: []domain.RankEntry{{Name: "Ana"}, {Name: "Luis"}}})
	require.NoError(t, err)
	require.Equal(t, ControlPodium, s.Phase)
	require.Len(t, s.Ranking.Podium, 2)

	s, _, err = ApplyControl(s, PodiumDone{})
	require.NoError(t, err)
	require.Equal(t, ControlSummary, s.Phase)
}

func TestControllerTimeUpEscalation(t *testing.T) {
	clock := newClock()
	s := lobbyWithStudents(t, 0)
	s, _, _ = ApplyControl(s, StartQuestion{Now: clock.now})

	clock.advance(11 * time.Second)
	s, effects, err := ApplyControl(s, Tick{})
	require.NoError(t, err)
	require.Equal(t, []Effect{EmitTimeUp{RoomID: "AB12", QuestionIndex: 0}}, effects)

	_, effects, _ = ApplyControl(s, Tick{})
	require.Empty(t, effects)
}

func TestControllerGuards(t *testing.T) {
	clock := newClock()
	_, _, err := ApplyControl(NewControlState(), StartQuestion{Now: clock.now})
	require.ErrorIs(t, err, ErrNoRoom)

	s, _, _ := ApplyControl(NewControlState(), CreateRoom{TeacherID: "t1"})
	s, _, _ = ApplyControl(s, RoomCreated{Room: domain.RoomRef{Code: "AB12"}})
	_, _, err = ApplyControl(s, StartQuestion{Now: clock.now})
	require.ErrorIs(t, err, ErrNoStudents)

	_, _, err = ApplyControl(s, PodiumDone{})
	require.ErrorIs(t, err, ErrUnexpectedEvent)
}

func TestCreateFailedAllowsRetry(t *testing.T) {
	s, _, err := ApplyControl(NewControlState(), CreateRoom{TeacherID: "t1", SubjectID: "sub1"})
	require.NoError(t, err)
	require.True(t, s.Creating)

	s, effects, err := ApplyControl(s, CreateFailed{})
	require.NoError(t, err)
	require.Empty(t, effects)
	require.False(t, s.Creating)
	require.Equal(t, ControlInit, s.Phase)

	_, _, err = ApplyControl(s, CreateFailed{})
	require.ErrorIs(t, err, ErrUnexpectedEvent)

	_, effects, err = ApplyControl(s, CreateRoom{TeacherID: "t1", SubjectID: "sub2"})
	require.NoError(t, err)
	require.Equal(t, []Effect{EmitCreateRoom{TeacherID: "t1", SubjectID: "sub2"}}, effects)
}
