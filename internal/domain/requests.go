package domain

// JoinRequest is what a student types to enter a live room.
type JoinRequest struct {
	Code        string   `json:"code" validate:"required,alphanum,max=12"`
	StudentID   string   `json:"studentId" validate:"required"`
	StudentName string   `json:"studentName" validate:"required"`
	Game        GameType `json:"game" validate:"oneof=battle allforall"`
}

// SignInRequest is the login form.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse is returned by POST /auth/signin.
type SignInResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate is the PATCH /auth/me body. Empty fields are left untouched.
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Lastname string `json:"lastname,omitempty"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// SubjectInput is the POST /subjects body.
type SubjectInput struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description,omitempty"`
}

// AssignPointsRequest is the POST /points/assign body.
type AssignPointsRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	SubjectID string `json:"subjectId" validate:"required"`
	Points    int    `json:"points" validate:"required,ne=0"`
	Reason    string `json:"reason,omitempty"`
}

// RewardInput is used to create or update a reward.
type RewardInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Cost        int    `json:"cost" validate:"gt=0"`
	SubjectID   string `json:"subjectId" validate:"required"`
}

// RedeemRequest asks for a reward in exchange for points.
type RedeemRequest struct {
	RewardID  string `json:"rewardId" validate:"required"`
	SubjectID string `json:"subjectId,omitempty"`
}

// PendingDecision approves or rejects a pending redemption.
type PendingDecision struct {
	RedemptionID string `json:"redemptionId" validate:"required"`
	Status       string `json:"status" validate:"oneof=approved rejected"`
}

// EnrollRequest joins a subject by its code.
type EnrollRequest struct {
	Code string `json:"code" validate:"required"`
}
