package protocol

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ChallengeMode says which attribute of the Stroop word is the right answer.
type ChallengeMode string

const (
	// ModeColor asks for the ink color.
	ModeColor ChallengeMode = "color"
	// ModeText asks for the written word.
	ModeText ChallengeMode = "text"
)

// Challenge is one All-for-All round.
type Challenge struct {
	Word     string        `json:"word"`
	Color    string        `json:"color"`
	Mode     ChallengeMode `json:"mode"`
	Options  []string      `json:"options"`
	Duration time.Duration `json:"duration"`
	RoundID  string        `json:"roundId,omitempty"`
}

// DecodeChallenge reads start-all-for-all.
func DecodeChallenge(raw json.RawMessage, defaultDuration time.Duration) (Challenge, error) {
	var body struct {
		Word      string   `json:"word"`
		Text      string   `json:"text"`
		Color     string   `json:"color"`
		InkColor  string   `json:"inkColor"`
		Mode      string   `json:"mode"`
		Options   []string `json:"options"`
		Colors    []string `json:"colors"`
		Duration  int      `json:"duration"`
		TimeLimit int      `json:"timeLimit"`
		RoundID   string   `json:"roundId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Challenge{}, errors.Wrap(err, "decode start-all-for-all")
	}
	c := Challenge{
		Word:     firstNonEmpty(body.Word, body.Text),
		Color:    firstNonEmpty(body.Color, body.InkColor),
		Mode:     ChallengeMode(strings.ToLower(body.Mode)),
		Options:  body.Options,
		Duration: defaultDuration,
		RoundID:  body.RoundID,
	}
	if len(c.Options) == 0 {
		c.Options = body.Colors
	}
	if secs := firstPositive(body.Duration, body.TimeLimit); secs > 0 {
		c.Duration = time.Duration(secs) * time.Second
	}
	if c.Mode != ModeColor && c.Mode != ModeText {
		return Challenge{}, errors.Errorf("unknown challenge mode %q", body.Mode)
	}
	if c.Word == "" || c.Color == "" {
		return Challenge{}, errors.New("challenge without word or color")
	}
	return c, nil
}
