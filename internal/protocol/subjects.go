package protocol

import (
	"encoding/json"
	"strings"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
)

// FullSubject is the create-full-subject payload: a subject together with its
// question bank.
type FullSubject struct {
	TeacherID string             `json:"teacherId"`
	Name      string             `json:"name"`
	Questions []FullSubjectEntry `json:"questions"`
}

// FullSubjectEntry is one question of a FullSubject.
type FullSubjectEntry struct {
	Text     string              `json:"text"`
	Duration int                 `json:"duration,omitempty"`
	Options  []FullSubjectOption `json:"options"`
}

// FullSubjectOption is an answer choice of a FullSubject question.
type FullSubjectOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// EncodeBank builds the create-full-subject payload for a bank.
func EncodeBank(bank domain.Bank) FullSubject {
	out := FullSubject{TeacherID: bank.TeacherID, Name: bank.Name}
	for _, q := range bank.Questions {
		entry := FullSubjectEntry{Text: q.Text, Duration: q.Duration}
		for _, o := range q.Options {
			entry.Options = append(entry.Options, FullSubjectOption{Text: o.Text, IsCorrect: o.Correct})
		}
		out.Questions = append(out.Questions, entry)
	}
	return out
}

// DecodeSubjects reads subjects-list, either a bare array or {subjects: [...]}.
func DecodeSubjects(raw json.RawMessage) ([]domain.Subject, error) {
	var subjects []domain.Subject
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		if err := json.Unmarshal(raw, &subjects); err != nil {
			return nil, errors.Wrap(err, "decode subjects-list")
		}
		return subjects, nil
	}
	var body struct {
		Subjects []domain.Subject `json:"subjects"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.Wrap(err, "decode subjects-list")
	}
	return body.Subjects, nil
}

// DecodeSubjectCreated reads subject-created-success.
func DecodeSubjectCreated(raw json.RawMessage) (domain.Subject, error) {
	var body struct {
		domain.Subject
		Wrapped *domain.Subject `json:"subject"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.Subject{}, errors.Wrap(err, "decode subject-created-success")
	}
	if body.Wrapped != nil {
		return *body.Wrapped, nil
	}
	return body.Subject, nil
}
