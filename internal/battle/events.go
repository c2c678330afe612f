package battle

import (
	"errors"
	"time"

	"classbattle-client/internal/domain"
)

var (
	ErrNotAcceptingAnswers = errors.New("not accepting answers")
	ErrAlreadyAnswered     = errors.New("answer already submitted this round")
	ErrUnknownOption       = errors.New("option not in current question")
	ErrUnexpectedEvent     = errors.New("event not valid in current phase")
	ErrUnsupportedEvent    = errors.New("unsupported event")
	ErrDisconnected        = errors.New("interaction blocked while disconnected")
	ErrRankingFinal        = errors.New("ranking already received")
	ErrNoRoom              = errors.New("no room created")
	ErrNoStudents          = errors.New("no students in room")
	ErrNoMoreQuestions     = errors.New("no questions left")
)

// Event is anything a machine reacts to: server pushes, clicks, ticks.
type Event interface{ isEvent() }

// Student-side events.
type (
	NewQuestion struct {
		Snapshot domain.QuestionSnapshot
		Now      func() time.Time
	}
	SelectOption struct {
		OptionID string
	}
	AnswerAcked   struct{}
	RoundResult   struct{ Result domain.RoundResult }
	DismissPodium struct{}
	Reset         struct{}
)

// Controller-side events.
type (
	CreateRoom struct {
		TeacherID       string
		SubjectID       string
		TotalQuestions  int
		QuestionSeconds int
	}
	RoomCreated    struct{ Room domain.RoomRef }
	CreateFailed   struct{}
	RoomUpdated    struct{ Students []domain.Student }
	StartQuestion  struct{ Now func() time.Time }
	AnswerReceived struct{ Count int }
	RoundFinished  struct{ Standings []domain.RankEntry }
	EndBattle      struct{}
	PodiumDone     struct{}
)

// Shared events.
type (
	GameOver struct {
		Winners []domain.RankEntry
		Full    []domain.RankEntry
	}
	Tick         struct{}
	Disconnected struct{}
	Connected    struct{}
)

func (NewQuestion) isEvent()    {}
func (SelectOption) isEvent()   {}
func (AnswerAcked) isEvent()    {}
func (RoundResult) isEvent()    {}
func (DismissPodium) isEvent()  {}
func (Reset) isEvent()          {}
func (CreateRoom) isEvent()     {}
func (RoomCreated) isEvent()    {}
func (CreateFailed) isEvent()   {}
func (RoomUpdated) isEvent()    {}
func (StartQuestion) isEvent()  {}
func (AnswerReceived) isEvent() {}
func (RoundFinished) isEvent()  {}
func (EndBattle) isEvent()      {}
func (PodiumDone) isEvent()     {}
func (GameOver) isEvent()       {}
func (Tick) isEvent()           {}
func (Disconnected) isEvent()   {}
func (Connected) isEvent()      {}

// Effect is work the runner performs after a transition.
type Effect interface{ isEffect() }

type (
	EmitAnswer struct{ Submission domain.AnswerSubmission }
	EmitTimeUp struct {
		RoomID        string `json:"roomId"`
		QuestionID    string `json:"questionId,omitempty"`
		QuestionIndex int    `json:"questionIndex"`
		StudentID     string `json:"studentId,omitempty"`
	}
	EmitCreateRoom struct {
		TeacherID string `json:"teacherId"`
		SubjectID string `json:"subjectId"`
	}
	EmitStartQuestion struct {
		RoomID        string `json:"roomId"`
		QuestionIndex int    `json:"questionIndex"`
	}
	EmitEndBattle struct {
		RoomID string `json:"roomId"`
	}
	StartCountdown struct{ Seconds int }
	StopCountdown  struct{}
)

func (EmitAnswer) isEffect()        {}
func (EmitTimeUp) isEffect()        {}
func (EmitCreateRoom) isEffect()    {}
func (EmitStartQuestion) isEffect() {}
func (EmitEndBattle) isEffect()     {}
func (StartCountdown) isEffect()    {}
func (StopCountdown) isEffect()     {}
