package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"classbattle-client/internal/domain"
)

func TestSubjectCacheCaches(t *testing.T) {
	loader := &countingLoader{subjects: []domain.Subject{{ID: "sub1", Name: "Matemáticas"}}}
	cache := NewSubjectCache(loader, time.Minute)

	if _, err := cache.Subjects(context.Background(), "t1"); err != nil {
		t.Fatalf("subjects: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := cache.Subjects(context.Background(), "t1"); err != nil {
		t.Fatalf("subjects 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}

	_ = cache.Invalidate(context.Background(), "t1")
	if _, err := cache.Subjects(context.Background(), "t1"); err != nil {
		t.Fatalf("subjects 3: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.count())
	}
}

func TestSubjectCacheExpires(t *testing.T) {
	loader := &countingLoader{}
	cache := NewSubjectCache(loader, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	cache.clock = func() time.Time { return now }

	_, _ = cache.Subjects(context.Background(), "t1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.Subjects(context.Background(), "t1")
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestStaticBankLoader(t *testing.T) {
	loader := NewStaticBankLoader(map[string]domain.Bank{"b1": {ID: "b1", Name: "Sumas"}})
	if _, err := loader.LoadBank(context.Background(), "b1"); err != nil {
		t.Fatalf("load bank: %v", err)
	}
	if _, err := loader.LoadBank(context.Background(), "nope"); err != domain.ErrBankNotFound {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

type countingLoader struct {
	mu       sync.Mutex
	calls    int
	subjects []domain.Subject
}

func (l *countingLoader) LoadSubjects(context.Context, string) ([]domain.Subject, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.subjects, nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
