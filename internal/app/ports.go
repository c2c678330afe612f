package app

import (
	"context"

	"classbattle-client/internal/domain"
)

// DeviceStore keeps what the client remembers between runs: the bearer
// token, the signed-in user and the last rooms a teacher opened. Last
// writer wins.
type DeviceStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	User(ctx context.Context) (domain.User, bool, error)
	SetUser(ctx context.Context, user domain.User) error
	Rooms(ctx context.Context, teacherID string) ([]domain.RoomRef, error)
	SetRooms(ctx context.Context, teacherID string, rooms []domain.RoomRef) error
	Clear(ctx context.Context) error
}

// SubjectCache serves a teacher's subject list without hitting the API on
// every screen.
type SubjectCache interface {
	Subjects(ctx context.Context, teacherID string) ([]domain.Subject, error)
	Invalidate(ctx context.Context, teacherID string) error
}

// BankLoader fetches question banks from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.Bank, error)
}
