package domain

import "time"

// User is the cached profile of the signed-in account.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Points   int    `json:"points,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Lastname string `json:"lastname,omitempty"`
}

// IsTeacher reports whether the account can host games.
func (u User) IsTeacher() bool {
	return u.Role == "teacher" || u.Role == "profesor"
}

// Subject is a class owned by a teacher.
type Subject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Code        string    `json:"code,omitempty"`
	TeacherID   string    `json:"teacherId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Enrollment links a student to a subject.
type Enrollment struct {
	ID        string  `json:"id"`
	SubjectID string  `json:"subjectId"`
	StudentID string  `json:"studentId"`
	Points    int     `json:"points"`
	Subject   Subject `json:"subject,omitempty"`
	Student   User    `json:"student,omitempty"`
}

// Reward can be redeemed by students for points.
type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cost        int    `json:"cost"`
	SubjectID   string `json:"subjectId,omitempty"`
	TeacherID   string `json:"teacherId,omitempty"`
}

// Redemption is a student request for a reward, approved by the teacher.
type Redemption struct {
	ID        string `json:"id"`
	RewardID  string `json:"rewardId"`
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
	Reward    Reward `json:"reward,omitempty"`
	Student   User   `json:"student,omitempty"`
}

// Achievement is a badge unlocked by a student.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Unlocked    bool   `json:"unlocked"`
}

// Bank is a teacher-owned reusable set of quiz questions.
type Bank struct {
	ID        string         `json:"id,omitempty" yaml:"id"`
	TeacherID string         `json:"teacherId" yaml:"teacherId" validate:"required"`
	Name      string         `json:"name" yaml:"name" validate:"required"`
	Questions []BankQuestion `json:"questions" yaml:"questions" validate:"required,min=1,dive"`
}

// BankQuestion is one question of a bank, including the right answer.
type BankQuestion struct {
	Text     string       `json:"text" yaml:"text" validate:"required"`
	Duration int          `json:"duration,omitempty" yaml:"duration" validate:"gte=0"`
	Options  []BankOption `json:"options" yaml:"options" validate:"required,min=2,dive"`
}

// BankOption is an answer choice inside a bank.
type BankOption struct {
	Text    string `json:"text" yaml:"text" validate:"required"`
	Correct bool   `json:"correct" yaml:"correct"`
}
