package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"classbattle-client/internal/domain"
	"golang.org/x/sync/singleflight"
)

// SubjectLoader fetches a teacher's subjects from the API.
type SubjectLoader interface {
	LoadSubjects(ctx context.Context, teacherID string) ([]domain.Subject, error)
}

// SubjectLoaderFunc adapts a function to SubjectLoader.
type SubjectLoaderFunc func(ctx context.Context, teacherID string) ([]domain.Subject, error)

func (f SubjectLoaderFunc) LoadSubjects(ctx context.Context, teacherID string) ([]domain.Subject, error) {
	return f(ctx, teacherID)
}

// SubjectCache caches subject lists with TTL to avoid repeated API calls.
type SubjectCache struct {
	loader SubjectLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSubjects
}

type cachedSubjects struct {
	subjects  []domain.Subject
	expiresAt time.Time
}

func NewSubjectCache(loader SubjectLoader, ttl time.Duration) *SubjectCache {
	return &SubjectCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSubjects),
	}
}

func (c *SubjectCache) Subjects(ctx context.Context, teacherID string) ([]domain.Subject, error) {
	if subjects, ok := c.lookup(teacherID); ok {
		return subjects, nil
	}

	result, err, _ := c.sf.Do(teacherID, func() (interface{}, error) {
		if subjects, ok := c.lookup(teacherID); ok {
			return subjects, nil
		}

		subjects, err := c.loader.LoadSubjects(ctx, teacherID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[teacherID] = cachedSubjects{
			subjects:  subjects,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return subjects, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Subject(nil), result.([]domain.Subject)...), nil
}

// Invalidate drops the cached list, e.g. after creating or deleting a subject.
func (c *SubjectCache) Invalidate(_ context.Context, teacherID string) error {
	c.mu.Lock()
	delete(c.cache, teacherID)
	c.mu.Unlock()
	return nil
}

func (c *SubjectCache) lookup(teacherID string) ([]domain.Subject, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[teacherID]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return append([]domain.Subject(nil), entry.subjects...), true
}

func (c *SubjectCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter so lists cached together do not expire together
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
