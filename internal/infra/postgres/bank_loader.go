package postgres

import (
	"context"
	"encoding/json"

	"classbattle-client/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
)

// BankLoader loads question banks stored as JSONB in Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	var (
		bank domain.Bank
		raw  []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT id, teacher_id, name, questions FROM question_banks WHERE id=$1`, bankID,
	).Scan(&bank.ID, &bank.TeacherID, &bank.Name, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bank{}, domain.ErrBankNotFound
	}
	if err != nil {
		return domain.Bank{}, errors.Wrap(err, "load bank")
	}
	if err := json.Unmarshal(raw, &bank.Questions); err != nil {
		return domain.Bank{}, errors.Wrap(err, "unmarshal bank questions")
	}
	return bank, nil
}

// ListBanks returns a teacher's banks without their questions.
func (l *BankLoader) ListBanks(ctx context.Context, teacherID string) ([]domain.Bank, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, teacher_id, name FROM question_banks WHERE teacher_id=$1 ORDER BY name`, teacherID)
	if err != nil {
		return nil, errors.Wrap(err, "list banks")
	}
	defer rows.Close()

	var banks []domain.Bank
	for rows.Next() {
		var b domain.Bank
		if err := rows.Scan(&b.ID, &b.TeacherID, &b.Name); err != nil {
			return nil, errors.Wrap(err, "scan bank")
		}
		banks = append(banks, b)
	}
	return banks, errors.Wrap(rows.Err(), "list banks")
}

// SaveBank upserts a bank.
func (l *BankLoader) SaveBank(ctx context.Context, bank domain.Bank) error {
	raw, err := json.Marshal(bank.Questions)
	if err != nil {
		return errors.Wrap(err, "marshal bank questions")
	}
	_, err = l.pool.Exec(ctx, `
INSERT INTO question_banks (id, teacher_id, name, questions)
VALUES ($1, $2, $3, $4::jsonb)
ON CONFLICT (id) DO UPDATE SET teacher_id=EXCLUDED.teacher_id, name=EXCLUDED.name, questions=EXCLUDED.questions, updated_at=now()`,
		bank.ID, bank.TeacherID, bank.Name, string(raw))
	return errors.Wrap(err, "save bank")
}
