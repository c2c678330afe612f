package protocol

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
)

type optionPayload struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Label  string `json:"label"`
	Option string `json:"option"`
}

type questionPayload struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Question string            `json:"question"`
	Options  []json.RawMessage `json:"options"`
}

type newQuestionPayload struct {
	questionPayload
	Question       json.RawMessage `json:"question"`
	Duration       int             `json:"duration"`
	TimeLimit      int             `json:"timeLimit"`
	QuestionIndex  *int            `json:"questionIndex"`
	Index          *int            `json:"index"`
	TotalQuestions int             `json:"totalQuestions"`
	Total          int             `json:"total"`
	EndsAt         int64           `json:"endsAt"`
}

// DecodeNewQuestion builds the snapshot of a new-question event. The question
// may be nested under "question" or inlined. String options get their position
// as id. A missing duration falls back to defaultDuration.
func DecodeNewQuestion(raw json.RawMessage, defaultDuration time.Duration) (domain.QuestionSnapshot, error) {
	var body newQuestionPayload
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.QuestionSnapshot{}, errors.Wrap(err, "decode new-question")
	}

	q := body.questionPayload
	if len(body.Question) > 0 {
		var nested questionPayload
		if err := json.Unmarshal(body.Question, &nested); err == nil {
			q = nested
		} else {
			var text string
			if err := json.Unmarshal(body.Question, &text); err == nil {
				q.Text = text
			}
		}
	}

	options, err := decodeOptions(q.Options)
	if err != nil {
		return domain.QuestionSnapshot{}, err
	}
	if len(options) == 0 {
		return domain.QuestionSnapshot{}, errors.New("new-question without options")
	}

	snap := domain.QuestionSnapshot{
		Question: domain.Question{
			ID:      q.ID,
			Text:    firstNonEmpty(q.Text, q.Question),
			Options: options,
		},
		Duration: defaultDuration,
		Total:    body.TotalQuestions,
	}
	if secs := firstPositive(body.Duration, body.TimeLimit); secs > 0 {
		snap.Duration = time.Duration(secs) * time.Second
	}
	if body.QuestionIndex != nil {
		snap.Index = *body.QuestionIndex
	} else if body.Index != nil {
		snap.Index = *body.Index
	}
	if snap.Total == 0 {
		snap.Total = body.Total
	}
	if body.EndsAt > 0 {
		snap.EndsAt = time.UnixMilli(body.EndsAt)
	}
	return snap, nil
}

func decodeOptions(items []json.RawMessage) ([]domain.Option, error) {
	options := make([]domain.Option, 0, len(items))
	for i, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			options = append(options, domain.Option{ID: strconv.Itoa(i), Text: text})
			continue
		}
		var o optionPayload
		if err := json.Unmarshal(item, &o); err != nil {
			return nil, errors.Wrap(err, "decode option")
		}
		id := o.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		options = append(options, domain.Option{ID: id, Text: firstNonEmpty(o.Text, o.Label, o.Option)})
	}
	return options, nil
}

type resultPayload struct {
	StudentID  string `json:"studentId"`
	Correct    *bool  `json:"correct"`
	IsCorrect  *bool  `json:"isCorrect"`
	Points     int    `json:"points"`
	Earned     int    `json:"pointsEarned"`
	TotalScore int    `json:"totalScore"`
	Score      int    `json:"score"`
}

func (r resultPayload) result() domain.RoundResult {
	correct := false
	if r.Correct != nil {
		correct = *r.Correct
	} else if r.IsCorrect != nil {
		correct = *r.IsCorrect
	}
	return domain.RoundResult{
		Correct:    correct,
		Points:     firstPositive(r.Points, r.Earned),
		TotalScore: firstPositive(r.TotalScore, r.Score),
	}
}

// DecodeRoundResult returns the local player's result. When the server
// broadcasts a results list, the entry for studentID is picked; ok is false
// when the list does not mention the player.
func DecodeRoundResult(raw json.RawMessage, studentID string) (domain.RoundResult, bool, error) {
	var body struct {
		resultPayload
		Results []resultPayload `json:"results"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.RoundResult{}, false, errors.Wrap(err, "decode round-result")
	}
	if body.Results == nil {
		return body.resultPayload.result(), true, nil
	}
	for _, r := range body.Results {
		if r.StudentID == studentID {
			return r.result(), true, nil
		}
	}
	return domain.RoundResult{}, false, nil
}

// DecodeStandings reads the scoreboard a controller sees after a round.
func DecodeStandings(raw json.RawMessage) ([]domain.RankEntry, error) {
	var body struct {
		Results  json.RawMessage `json:"results"`
		Ranking  json.RawMessage `json:"ranking"`
		Students json.RawMessage `json:"students"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(err, "decode standings")
	}
	for _, list := range []json.RawMessage{body.Ranking, body.Results, body.Students} {
		if len(list) > 0 && string(list) != "null" {
			return decodeRankList(list)
		}
	}
	return nil, nil
}

// DecodeGameOver returns the ranked winners list and the full ranking (which
// defaults to the winners list when absent).
func DecodeGameOver(raw json.RawMessage) (winners, full []domain.RankEntry, err error) {
	var body struct {
		Winners json.RawMessage `json:"winners"`
		Podium  json.RawMessage `json:"podium"`
		Ranking json.RawMessage `json:"ranking"`
		Players json.RawMessage `json:"players"`
	}
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		winners, err = decodeRankList(raw)
		return winners, winners, err
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, nil, errors.Wrap(err, "decode game-over")
	}
	pick := func(lists ...json.RawMessage) ([]domain.RankEntry, error) {
		for _, l := range lists {
			if len(l) > 0 && string(l) != "null" {
				return decodeRankList(l)
			}
		}
		return nil, nil
	}
	if winners, err = pick(body.Winners, body.Podium, body.Ranking, body.Players); err != nil {
		return nil, nil, err
	}
	if full, err = pick(body.Ranking, body.Players); err != nil {
		return nil, nil, err
	}
	if full == nil {
		full = winners
	}
	return winners, full, nil
}

func decodeRankList(raw json.RawMessage) ([]domain.RankEntry, error) {
	students, err := decodeRoster(raw)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.RankEntry, 0, len(students))
	for _, s := range students {
		entries = append(entries, domain.RankEntry{StudentID: s.ID, Name: s.Name, Score: s.Score})
	}
	return entries, nil
}

// DecodeAnswerCount reads how many answers the server has collected, or 0 when
// the event carries a single answer notice.
func DecodeAnswerCount(raw json.RawMessage) int {
	var body struct {
		Count         int `json:"count"`
		AnswersCount  int `json:"answersCount"`
		TotalAnswered int `json:"totalAnswered"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0
	}
	return firstPositive(body.AnswersCount, body.Count, body.TotalAnswered)
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
