package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"classbattle-client/internal/app"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket/sockettest"
)

func TestRequestReplyAndRejection(t *testing.T) {
	bus := sockettest.NewBus()
	bus.OnEmit = func(event string, _ json.RawMessage) {
		switch event {
		case protocol.GetMySubjects:
			bus.Deliver(protocol.SubjectsList, []map[string]string{{"id": "sub1", "name": "Mates"}})
		case protocol.CreateFullSubject:
			bus.Deliver(protocol.Error, map[string]string{"error": "Nombre repetido"})
		}
	}
	ctx := context.Background()

	reply, err := app.Request(ctx, bus, protocol.GetMySubjects, nil, []string{protocol.SubjectsList}, []string{protocol.Error}, time.Second)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if reply.Event != protocol.SubjectsList {
		t.Fatalf("unexpected reply event %q", reply.Event)
	}

	_, err = app.Request(ctx, bus, protocol.CreateFullSubject, nil, []string{protocol.SubjectCreatedOK}, []string{protocol.Error}, time.Second)
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	var rejected *app.RejectedError
	if !errors.As(err, &rejected) || rejected.Message != "Nombre repetido" {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	bus := sockettest.NewBus()
	_, err := app.Request(context.Background(), bus, protocol.GetMySubjects, nil, []string{protocol.SubjectsList}, nil, 20*time.Millisecond)
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if bus.Handlers(protocol.SubjectsList) != 0 {
		t.Fatalf("expected listener released")
	}
}
