// Package file keeps the device state in a YAML file under the user's config
// directory, so a login survives between CLI runs without Redis.
package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type document struct {
	Token string                      `yaml:"token,omitempty"`
	User  *domain.User                `yaml:"user,omitempty"`
	Rooms map[string][]domain.RoomRef `yaml:"rooms,omitempty"`
}

// DeviceStore reads and rewrites the whole file on every call. Last writer
// wins.
type DeviceStore struct {
	path string
	mu   sync.Mutex
}

func NewDeviceStore(path string) *DeviceStore {
	return &DeviceStore{path: path}
}

// DefaultPath is $XDG_CONFIG_HOME/classbattle/device.yaml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locate config dir")
	}
	return filepath.Join(dir, "classbattle", "device.yaml"), nil
}

func (s *DeviceStore) Token(_ context.Context) (string, error) {
	doc, err := s.load()
	return doc.Token, err
}

func (s *DeviceStore) SetToken(_ context.Context, token string) error {
	return s.update(func(d *document) { d.Token = token })
}

func (s *DeviceStore) User(_ context.Context) (domain.User, bool, error) {
	doc, err := s.load()
	if err != nil || doc.User == nil {
		return domain.User{}, false, err
	}
	return *doc.User, true, nil
}

func (s *DeviceStore) SetUser(_ context.Context, user domain.User) error {
	return s.update(func(d *document) { d.User = &user })
}

func (s *DeviceStore) Rooms(_ context.Context, teacherID string) ([]domain.RoomRef, error) {
	doc, err := s.load()
	return doc.Rooms[teacherID], err
}

func (s *DeviceStore) SetRooms(_ context.Context, teacherID string, rooms []domain.RoomRef) error {
	return s.update(func(d *document) {
		if d.Rooms == nil {
			d.Rooms = make(map[string][]domain.RoomRef)
		}
		d.Rooms[teacherID] = rooms
	})
}

func (s *DeviceStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove device file")
	}
	return nil
}

func (s *DeviceStore) load() (document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *DeviceStore) read() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return doc, errors.Wrap(err, "read device file")
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, errors.Wrap(err, "parse device file")
	}
	return doc, nil
}

func (s *DeviceStore) update(fn func(*document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return err
	}
	fn(&doc)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode device file")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "write device file")
}
