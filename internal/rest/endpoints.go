package rest

import (
	"context"
	"net/http"
	"net/url"

	"classbattle-client/internal/domain"
	"github.com/pkg/errors"
)

// SignIn logs in and stores the token and profile.
func (c *Client) SignIn(ctx context.Context, in domain.SignInRequest) (domain.SignInResponse, error) {
	if err := domain.Validate(in); err != nil {
		return domain.SignInResponse{}, err
	}
	var out domain.SignInResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signin", in, &out); err != nil {
		return domain.SignInResponse{}, err
	}
	if out.Token == "" {
		return domain.SignInResponse{}, errors.New("signin response without token")
	}
	if c.creds != nil {
		if err := c.creds.SetToken(ctx, out.Token); err != nil {
			return out, errors.Wrap(err, "store token")
		}
		if err := c.creds.SetUser(ctx, out.User); err != nil {
			return out, errors.Wrap(err, "store user")
		}
	}
	return out, nil
}

// Me returns the signed-in profile.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

// UpdateMe patches the profile and refreshes the stored copy.
func (c *Client) UpdateMe(ctx context.Context, in domain.ProfileUpdate) (domain.User, error) {
	if err := domain.Validate(in); err != nil {
		return domain.User{}, err
	}
	var u domain.User
	if err := c.do(ctx, http.MethodPatch, "/auth/me", in, &u); err != nil {
		return domain.User{}, err
	}
	if c.creds != nil {
		if err := c.creds.SetUser(ctx, u); err != nil {
			return u, errors.Wrap(err, "store user")
		}
	}
	return u, nil
}

// ListSubjects returns the teacher's subjects.
func (c *Client) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	var out []domain.Subject
	err := c.do(ctx, http.MethodGet, "/subjects", nil, &out)
	return out, err
}

// CreateSubject creates a subject.
func (c *Client) CreateSubject(ctx context.Context, in domain.SubjectInput) (domain.Subject, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Subject{}, err
	}
	var out domain.Subject
	err := c.do(ctx, http.MethodPost, "/subjects", in, &out)
	return out, err
}

// DeleteSubject removes a subject.
func (c *Client) DeleteSubject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/subjects/"+url.PathEscape(id), nil, nil)
}

// MySubjects lists the subjects the student is enrolled in.
func (c *Client) MySubjects(ctx context.Context) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := c.do(ctx, http.MethodGet, "/enrollments/my-subjects", nil, &out)
	return out, err
}

// SubjectEnrollments lists the students of a subject.
func (c *Client) SubjectEnrollments(ctx context.Context, subjectID string) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := c.do(ctx, http.MethodGet, "/enrollments/subject/"+url.PathEscape(subjectID), nil, &out)
	return out, err
}

// LeaveSubject drops the student's enrollment.
func (c *Client) LeaveSubject(ctx context.Context, subjectID string) error {
	return c.do(ctx, http.MethodDelete, "/enrollments/leave/"+url.PathEscape(subjectID), nil, nil)
}

// JoinSubject enrolls the student using a subject code.
func (c *Client) JoinSubject(ctx context.Context, in domain.EnrollRequest) (domain.Enrollment, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Enrollment{}, err
	}
	var out domain.Enrollment
	err := c.do(ctx, http.MethodPost, "/enrollment/join", in, &out)
	return out, err
}

// StudentEnrollments returns the student's enrollments with points.
func (c *Client) StudentEnrollments(ctx context.Context) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := c.do(ctx, http.MethodGet, "/enrollment/student", nil, &out)
	return out, err
}

// AssignPoints gives or takes points from a student.
func (c *Client) AssignPoints(ctx context.Context, in domain.AssignPointsRequest) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/points/assign", in, nil)
}

// TeacherRewards lists the rewards the teacher created.
func (c *Client) TeacherRewards(ctx context.Context) ([]domain.Reward, error) {
	var out []domain.Reward
	err := c.do(ctx, http.MethodGet, "/rewards/teacher", nil, &out)
	return out, err
}

// RewardsByTeacher lists another teacher's rewards.
func (c *Client) RewardsByTeacher(ctx context.Context, teacherID string) ([]domain.Reward, error) {
	var out []domain.Reward
	err := c.do(ctx, http.MethodGet, "/rewards/teacher/"+url.PathEscape(teacherID), nil, &out)
	return out, err
}

// SubjectRewards lists the rewards of a subject.
func (c *Client) SubjectRewards(ctx context.Context, subjectID string) ([]domain.Reward, error) {
	var out []domain.Reward
	err := c.do(ctx, http.MethodGet, "/rewards/subject/"+url.PathEscape(subjectID), nil, &out)
	return out, err
}

// CreateReward creates a reward.
func (c *Client) CreateReward(ctx context.Context, in domain.RewardInput) (domain.Reward, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Reward{}, err
	}
	var out domain.Reward
	err := c.do(ctx, http.MethodPost, "/rewards", in, &out)
	return out, err
}

// UpdateReward patches a reward.
func (c *Client) UpdateReward(ctx context.Context, id string, in domain.RewardInput) (domain.Reward, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Reward{}, err
	}
	var out domain.Reward
	err := c.do(ctx, http.MethodPatch, "/rewards/"+url.PathEscape(id), in, &out)
	return out, err
}

// DeleteReward removes a reward.
func (c *Client) DeleteReward(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rewards/"+url.PathEscape(id), nil, nil)
}

// CreateRedemption asks for a reward.
func (c *Client) CreateRedemption(ctx context.Context, in domain.RedeemRequest) (domain.Redemption, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Redemption{}, err
	}
	var out domain.Redemption
	err := c.do(ctx, http.MethodPost, "/redemptions", in, &out)
	return out, err
}

// Redeem spends points on a reward right away.
func (c *Client) Redeem(ctx context.Context, in domain.RedeemRequest) (domain.Redemption, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Redemption{}, err
	}
	var out domain.Redemption
	err := c.do(ctx, http.MethodPost, "/rewards/redeem", in, &out)
	return out, err
}

// PendingRedemptions lists redemptions awaiting the teacher.
func (c *Client) PendingRedemptions(ctx context.Context) ([]domain.Redemption, error) {
	var out []domain.Redemption
	err := c.do(ctx, http.MethodGet, "/rewards/teacher/pending", nil, &out)
	return out, err
}

// DecidePending approves or rejects a redemption.
func (c *Client) DecidePending(ctx context.Context, in domain.PendingDecision) error {
	if err := domain.Validate(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPatch, "/rewards/teacher/pending", in, nil)
}

// Achievements lists the student's badges.
func (c *Client) Achievements(ctx context.Context) ([]domain.Achievement, error) {
	var out []domain.Achievement
	err := c.do(ctx, http.MethodGet, "/achievements", nil, &out)
	return out, err
}
