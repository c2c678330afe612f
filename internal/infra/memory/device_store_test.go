package memory

import (
	"context"
	"testing"

	"classbattle-client/internal/domain"
)

func TestDeviceStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewDeviceStore()

	if _, ok, _ := store.User(ctx); ok {
		t.Fatalf("expected no user on a fresh store")
	}
	if err := store.SetToken(ctx, "tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := store.SetUser(ctx, domain.User{ID: "t1", Role: "teacher"}); err != nil {
		t.Fatalf("set user: %v", err)
	}
	rooms := []domain.RoomRef{{Code: "AB12", Name: "Mates"}}
	if err := store.SetRooms(ctx, "t1", rooms); err != nil {
		t.Fatalf("set rooms: %v", err)
	}
	rooms[0].Code = "ZZZZ"

	got, _ := store.Rooms(ctx, "t1")
	if len(got) != 1 || got[0].Code != "AB12" {
		t.Fatalf("expected stored copy of rooms, got %+v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if token, _ := store.Token(ctx); token != "" {
		t.Fatalf("expected token cleared, got %q", token)
	}
	if got, _ := store.Rooms(ctx, "t1"); len(got) != 0 {
		t.Fatalf("expected rooms cleared, got %+v", got)
	}
}
