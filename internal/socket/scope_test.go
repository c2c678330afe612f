package socket_test

import (
	"encoding/json"
	"testing"

	"classbattle-client/internal/socket"
	"classbattle-client/internal/socket/sockettest"
)

func TestScopeReleasesEverything(t *testing.T) {
	bus := sockettest.NewBus()
	scope := socket.NewScope(bus)
	calls := 0
	scope.On("round-result", func(json.RawMessage) { calls++ })
	scope.On("game-over", func(json.RawMessage) { calls++ })

	bus.Deliver("round-result", nil)
	scope.Close()
	scope.Close()
	bus.Deliver("round-result", nil)
	bus.Deliver("game-over", nil)

	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
	if bus.Handlers("round-result") != 0 || bus.Handlers("game-over") != 0 {
		t.Fatalf("handlers leaked")
	}

	scope.On("room-update", func(json.RawMessage) {})
	if bus.Handlers("room-update") != 0 {
		t.Fatalf("subscribing on a closed scope must not leak")
	}
}
