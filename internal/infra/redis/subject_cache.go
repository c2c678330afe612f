package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SubjectCache caches subject lists in Redis as JSON and falls back to the
// loader on a miss. Key: subjects:{teacherID}.
type SubjectCache struct {
	client *redis.Client
	loader memory.SubjectLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewSubjectCache(client *redis.Client, loader memory.SubjectLoader, ttl time.Duration) *SubjectCache {
	return &SubjectCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *SubjectCache) Subjects(ctx context.Context, teacherID string) ([]domain.Subject, error) {
	key := c.key(teacherID)
	if subjects, ok := c.cached(ctx, key); ok {
		return subjects, nil
	}

	result, err, _ := c.sf.Do(teacherID, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if subjects, ok := c.cached(ctx, key); ok {
			return subjects, nil
		}

		subjects, err := c.loader.LoadSubjects(ctx, teacherID)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(subjects); err == nil {
			// best effort, the API stays the source of truth
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return subjects, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Subject), nil
}

func (c *SubjectCache) Invalidate(ctx context.Context, teacherID string) error {
	return c.client.Del(ctx, c.key(teacherID)).Err()
}

func (c *SubjectCache) cached(ctx context.Context, key string) ([]domain.Subject, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var subjects []domain.Subject
	if err := json.Unmarshal(raw, &subjects); err != nil {
		return nil, false
	}
	return subjects, true
}

func (c *SubjectCache) key(teacherID string) string {
	return "subjects:" + teacherID
}

func (c *SubjectCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
