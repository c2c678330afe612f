package memory

import (
	"context"
	"os"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// StaticBankLoader is a loader backed by an in-memory map, filled from YAML
// files or directly in tests.
type StaticBankLoader struct {
	banks map[string]domain.Bank
}

func NewStaticBankLoader(banks map[string]domain.Bank) *StaticBankLoader {
	return &StaticBankLoader{banks: banks}
}

// LoadBankFile reads one bank from a YAML file. The bank id defaults to the
// file path.
func LoadBankFile(path string) (*StaticBankLoader, domain.Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Bank{}, errors.Wrap(err, "read bank file")
	}
	var bank domain.Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, domain.Bank{}, errors.Wrap(err, "parse bank file")
	}
	if bank.ID == "" {
		bank.ID = path
	}
	return NewStaticBankLoader(map[string]domain.Bank{bank.ID: bank}), bank, nil
}

func (l *StaticBankLoader) LoadBank(_ context.Context, bankID string) (domain.Bank, error) {
	if bank, ok := l.banks[bankID]; ok {
		return bank, nil
	}
	return domain.Bank{}, domain.ErrBankNotFound
}
