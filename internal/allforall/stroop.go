package allforall

import (
	"strings"

	"classbattle-client/internal/protocol"
)

// Expected is the value a correct press must match: the ink color in color
// mode, the written word in text mode.
func Expected(c protocol.Challenge) string {
	if c.Mode == protocol.ModeText {
		return c.Word
	}
	return c.Color
}

// IsCorrect compares a press against the challenge ignoring case and padding.
func IsCorrect(c protocol.Challenge, pressed string) bool {
	pressed = strings.TrimSpace(pressed)
	if pressed == "" {
		return false
	}
	return strings.EqualFold(pressed, strings.TrimSpace(Expected(c)))
}
