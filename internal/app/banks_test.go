package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"classbattle-client/internal/app"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/infra/memory"
	"classbattle-client/internal/protocol"
	"classbattle-client/internal/socket/sockettest"
)

func sampleBank() domain.Bank {
	return domain.Bank{
		ID:   "bank-1",
		Name: "Capitales",
		Questions: []domain.BankQuestion{{
			Text:    "¿Capital de Perú?",
			Options: []domain.BankOption{{Text: "Lima", Correct: true}, {Text: "Quito"}},
		}},
	}
}

func TestBankServicePublishes(t *testing.T) {
	bus := sockettest.NewBus()
	var sent protocol.FullSubject
	bus.OnEmit = func(event string, raw json.RawMessage) {
		if event == protocol.CreateFullSubject {
			_ = json.Unmarshal(raw, &sent)
			bus.Deliver(protocol.SubjectCreatedOK, map[string]any{"subject": map[string]string{"id": "sub7", "name": "Capitales"}})
		}
	}
	loads := 0
	cache := memory.NewSubjectCache(memory.SubjectLoaderFunc(func(context.Context, string) ([]domain.Subject, error) {
		loads++
		return nil, nil
	}), time.Minute)
	_, _ = cache.Subjects(context.Background(), "t1")

	svc := app.NewBankService(bus, memory.NewStaticBankLoader(map[string]domain.Bank{"bank-1": sampleBank()}), cache, time.Second, nil)
	subject, err := svc.Create(context.Background(), "bank-1", "t1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if subject.ID != "sub7" {
		t.Fatalf("unexpected subject %+v", subject)
	}
	if sent.TeacherID != "t1" || len(sent.Questions) != 1 || !sent.Questions[0].Options[0].IsCorrect {
		t.Fatalf("unexpected payload %+v", sent)
	}

	_, _ = cache.Subjects(context.Background(), "t1")
	if loads != 2 {
		t.Fatalf("expected cache invalidated after publish, loads=%d", loads)
	}
}

func TestBankServiceRejectsInvalidBank(t *testing.T) {
	bus := sockettest.NewBus()
	bank := sampleBank()
	bank.TeacherID = "t1"
	bank.Questions[0].Options[1].Correct = true

	_, err := app.NewBankService(bus, nil, nil, time.Second, nil).Publish(context.Background(), bank)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(bus.Emitted("")) != 0 {
		t.Fatalf("invalid bank must not be sent")
	}

	_, err = app.NewBankService(bus, memory.NewStaticBankLoader(nil), nil, time.Second, nil).Create(context.Background(), "missing", "t1")
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func TestBankServiceListsSubjects(t *testing.T) {
	bus := sockettest.NewBus()
	bus.OnEmit = func(event string, _ json.RawMessage) {
		bus.Deliver(protocol.SubjectsList, map[string]any{"subjects": []map[string]string{{"id": "sub1", "name": "Mates"}}})
	}
	subjects, err := app.NewBankService(bus, nil, nil, time.Second, nil).MySubjects(context.Background(), "t1")
	if err != nil {
		t.Fatalf("my subjects: %v", err)
	}
	if len(subjects) != 1 {
		t.Fatalf("expected one subject, got %+v", subjects)
	}
}
