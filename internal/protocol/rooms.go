package protocol

import (
	"encoding/json"
	"strings"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
)

// RoomState is the decoded form of room-update, allforall-update and playersUpdate.
type RoomState struct {
	RoomID   string
	Students []domain.Student
	// HasRoster is true when the payload carried a students/players array,
	// even an empty one.
	HasRoster bool
}

type rosterEntry struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	Points    int    `json:"points"`
}

func (r rosterEntry) student() domain.Student {
	id := firstNonEmpty(r.StudentID, r.ID, r.UserID)
	name := firstNonEmpty(r.Name, r.Nickname)
	score := r.Score
	if score == 0 {
		score = r.Points
	}
	return domain.Student{ID: id, Name: name, Score: score}
}

// DecodeRoomState accepts either an object with students/players or a bare array.
func DecodeRoomState(raw json.RawMessage) (RoomState, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		students, err := decodeRoster(raw)
		if err != nil {
			return RoomState{}, err
		}
		return RoomState{Students: students, HasRoster: true}, nil
	}

	var body struct {
		RoomID   string          `json:"roomId"`
		RoomCode string          `json:"roomCode"`
		Code     string          `json:"code"`
		Students json.RawMessage `json:"students"`
		Players  json.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return RoomState{}, errors.Wrap(err, "decode room state")
	}
	state := RoomState{RoomID: domain.NormalizeCode(firstNonEmpty(body.RoomID, body.RoomCode, body.Code))}
	list := body.Students
	if len(list) == 0 || string(list) == "null" {
		list = body.Players
	}
	if len(list) == 0 || string(list) == "null" {
		return state, nil
	}
	students, err := decodeRoster(list)
	if err != nil {
		return RoomState{}, err
	}
	state.Students = students
	state.HasRoster = true
	return state, nil
}

// Contains reports whether studentID is on the roster.
func (r RoomState) Contains(studentID string) bool {
	for _, s := range r.Students {
		if s.ID == studentID {
			return true
		}
	}
	return false
}

func decodeRoster(raw json.RawMessage) ([]domain.Student, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "decode roster")
	}
	students := make([]domain.Student, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			students = append(students, domain.Student{Name: name})
			continue
		}
		var entry rosterEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			return nil, errors.Wrap(err, "decode roster entry")
		}
		students = append(students, entry.student())
	}
	return students, nil
}

// DecodeRoomCreated reads the code of a freshly created room.
func DecodeRoomCreated(raw json.RawMessage) (domain.RoomRef, error) {
	var code string
	if err := json.Unmarshal(raw, &code); err == nil && code != "" {
		return domain.RoomRef{Code: domain.NormalizeCode(code)}, nil
	}
	var body struct {
		RoomID   string `json:"roomId"`
		RoomCode string `json:"roomCode"`
		Code     string `json:"code"`
		Name     string `json:"name"`
		RoomName string `json:"roomName"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.RoomRef{}, errors.Wrap(err, "decode room-created")
	}
	code = firstNonEmpty(body.RoomID, body.RoomCode, body.Code)
	if code == "" {
		return domain.RoomRef{}, errors.New("room-created without code")
	}
	return domain.RoomRef{Code: domain.NormalizeCode(code), Name: firstNonEmpty(body.Name, body.RoomName)}, nil
}

// DecodeError extracts the server message of an error event.
func DecodeError(raw json.RawMessage) string {
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		return firstNonEmpty(body.Message, body.Error)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
