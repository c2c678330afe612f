package memory

import (
	"context"
	"sync"

	"classbattle-client/internal/domain"
)

// DeviceStore is an in-memory implementation of app.DeviceStore, used when no
// Redis is configured and in tests.
type DeviceStore struct {
	mu    sync.RWMutex
	token string
	user  *domain.User
	rooms map[string][]domain.RoomRef
}

func NewDeviceStore() *DeviceStore {
	return &DeviceStore{rooms: make(map[string][]domain.RoomRef)}
}

func (s *DeviceStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *DeviceStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *DeviceStore) User(_ context.Context) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false, nil
	}
	return *s.user, true, nil
}

func (s *DeviceStore) SetUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

func (s *DeviceStore) Rooms(_ context.Context, teacherID string) ([]domain.RoomRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RoomRef(nil), s.rooms[teacherID]...), nil
}

func (s *DeviceStore) SetRooms(_ context.Context, teacherID string, rooms []domain.RoomRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[teacherID] = append([]domain.RoomRef(nil), rooms...)
	return nil
}

// Clear forgets everything, as on logout.
func (s *DeviceStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.rooms = make(map[string][]domain.RoomRef)
	return nil
}
