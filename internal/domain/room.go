package domain

import (
	"strings"
	"time"
)

// GameType selects the join protocol and timeout.
type GameType string

const (
	GameBattle    GameType = "battle"
	GameAllForAll GameType = "allforall"
)

// RoomRef is the local mirror of a joined or created room.
type RoomRef struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// NormalizeCode trims and uppercases a human-entered room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Student is a roster entry pushed by the server.
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score,omitempty"`
}

// Option is one answer choice of a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is the prompt part of a round.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// HasOption reports whether optionID belongs to the question.
func (q Question) HasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// QuestionSnapshot is replaced wholesale on each new-question event.
type QuestionSnapshot struct {
	Question Question      `json:"question"`
	Duration time.Duration `json:"duration"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
	// EndsAt is the absolute deadline when the server declared one.
	EndsAt time.Time `json:"endsAt,omitempty"`
}

// AnswerSubmission is sent once per round.
type AnswerSubmission struct {
	RoomID     string `json:"roomId"`
	StudentID  string `json:"studentId"`
	QuestionID string `json:"questionId,omitempty"`
	OptionID   string `json:"optionId"`
}

// RoundResult is the feedback for the local player's last round.
type RoundResult struct {
	Correct    bool `json:"correct"`
	Points     int  `json:"points"`
	TotalScore int  `json:"totalScore"`
}

// RankEntry is one line of the final ranking.
type RankEntry struct {
	StudentID string `json:"studentId,omitempty"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
}

// Ranking is produced once per session and never mutated afterwards.
type Ranking struct {
	Podium []RankEntry `json:"podium"`
	Full   []RankEntry `json:"full"`
}
