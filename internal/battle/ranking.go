package battle

import (
	"strings"

	"classbattle-client/internal/domain"
)

const podiumSize = 3

// BuildRanking keeps the server order: the podium is the first three winners.
func BuildRanking(winners, full []domain.RankEntry) domain.Ranking {
	n := len(winners)
	if n > podiumSize {
		n = podiumSize
	}
	podium := append([]domain.RankEntry(nil), winners[:n]...)
	if full == nil {
		full = winners
	}
	return domain.Ranking{Podium: podium, Full: append([]domain.RankEntry(nil), full...)}
}

// InTopThree reports whether name is among the first three winners.
func InTopThree(winners []domain.RankEntry, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for i := 0; i < len(winners) && i < podiumSize; i++ {
		if strings.EqualFold(strings.TrimSpace(winners[i].Name), name) {
			return true
		}
	}
	return false
}
