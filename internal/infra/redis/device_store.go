package redis

import (
	"context"
	"encoding/json"
	"time"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DeviceStore keeps the client's persisted state in Redis so several
// terminals on one machine share a login.
// Keys:
//
//	{prefix}:token          bearer token
//	{prefix}:user           JSON profile
//	{prefix}:rooms:{id}     JSON list of rooms, expires after ttl
type DeviceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewDeviceStore(client *redis.Client, prefix string, ttl time.Duration) *DeviceStore {
	if prefix == "" {
		prefix = "classbattle:device"
	}
	return &DeviceStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *DeviceStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key("token")).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, errors.Wrap(err, "get token")
}

func (s *DeviceStore) SetToken(ctx context.Context, token string) error {
	return errors.Wrap(s.client.Set(ctx, s.key("token"), token, 0).Err(), "set token")
}

func (s *DeviceStore) User(ctx context.Context) (domain.User, bool, error) {
	raw, err := s.client.Get(ctx, s.key("user")).Bytes()
	if err == redis.Nil {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, errors.Wrap(err, "get user")
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return domain.User{}, false, errors.Wrap(err, "decode user")
	}
	return user, true, nil
}

func (s *DeviceStore) SetUser(ctx context.Context, user domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	return errors.Wrap(s.client.Set(ctx, s.key("user"), raw, 0).Err(), "set user")
}

func (s *DeviceStore) Rooms(ctx context.Context, teacherID string) ([]domain.RoomRef, error) {
	raw, err := s.client.Get(ctx, s.key("rooms:"+teacherID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get rooms")
	}
	var rooms []domain.RoomRef
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, errors.Wrap(err, "decode rooms")
	}
	return rooms, nil
}

func (s *DeviceStore) SetRooms(ctx context.Context, teacherID string, rooms []domain.RoomRef) error {
	raw, err := json.Marshal(rooms)
	if err != nil {
		return errors.Wrap(err, "encode rooms")
	}
	return errors.Wrap(s.client.Set(ctx, s.key("rooms:"+teacherID), raw, s.ttl).Err(), "set rooms")
}

// Clear removes every key under the prefix.
func (s *DeviceStore) Clear(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Wrap(err, "scan device keys")
	}
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(s.client.Del(ctx, keys...).Err(), "clear device keys")
}

func (s *DeviceStore) key(name string) string {
	return s.prefix + ":" + name
}
