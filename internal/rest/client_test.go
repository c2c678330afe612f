package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classbattle-client/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type memCreds struct {
	token string
	user  domain.User
}

func (m *memCreds) Token(context.Context) (string, error) { return m.token, nil }

func (m *memCreds) SetToken(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *memCreds) SetUser(_ context.Context, u domain.User) error {
	m.user = u
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		var in domain.SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Credenciales inválidas"})
			return
		}
		writeJSON(w, http.StatusOK, domain.SignInResponse{
			Token: "tok-1",
			User:  domain.User{ID: "t1", Name: "Marta", Email: in.Email, Role: "teacher"},
		})
	})
	r.Get("/subjects", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, []domain.Subject{{ID: "sub1", Name: "Matemáticas"}})
	})
	r.Post("/subjects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": []string{"name must be shorter", "name is taken"}})
	})
	r.Delete("/subjects/{id}", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "sub 1", chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/achievements", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})
	r.Patch("/rewards/teacher/pending", func(w http.ResponseWriter, r *http.Request) {
		var in domain.PendingDecision
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "approved", in.Status)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInStoresCredentialsAndSendsBearer(t *testing.T) {
	srv := newAPI(t)
	creds := &memCreds{}
	client := NewClient(srv.URL+"/", time.Second, creds)
	ctx := context.Background()

	out, err := client.SignIn(ctx, domain.SignInRequest{Email: "marta@colegio.edu", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "tok-1", out.Token)
	require.Equal(t, "tok-1", creds.token)
	require.True(t, creds.user.IsTeacher())

	subjects, err := client.ListSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	require.Equal(t, "Matemáticas", subjects[0].Name)
}

func TestAPIErrorMessages(t *testing.T) {
	srv := newAPI(t)
	client := NewClient(srv.URL, time.Second, &memCreds{})
	ctx := context.Background()

	_, err := client.SignIn(ctx, domain.SignInRequest{Email: "marta@colegio.edu", Password: "bad"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Credenciales inválidas", apiErr.Message)
	require.True(t, IsUnauthorized(err))

	_, err = client.ListSubjects(ctx)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Unauthorized", apiErr.Message)

	_, err = client.CreateSubject(ctx, domain.SubjectInput{Name: "Historia"})
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "name must be shorter, name is taken", apiErr.Message)

	_, err = client.Achievements(ctx)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, domain.MsgRequestFailed, apiErr.Message)
}

func TestValidationRunsBeforeRequest(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := client.SignIn(context.Background(), domain.SignInRequest{Email: "no-es-correo"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestEmptyBodiesAndPathEscaping(t *testing.T) {
	srv := newAPI(t)
	client := NewClient(srv.URL, time.Second, nil)
	ctx := context.Background()

	require.NoError(t, client.DeleteSubject(ctx, "sub 1"))
	require.NoError(t, client.DecidePending(ctx, domain.PendingDecision{RedemptionID: "r1", Status: "approved"}))
}

func TestNetworkErrorIsWrapped(t *testing.T) {
	srv := newAPI(t)
	url := srv.URL
	srv.Close()

	client := NewClient(url, time.Second, nil)
	_, err := client.Me(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestTokenExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	sign := func(exp time.Time) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
		s, err := tok.SignedString([]byte("test-key"))
		require.NoError(t, err)
		return s
	}

	require.False(t, TokenExpired(sign(now.Add(time.Hour)), now))
	require.True(t, TokenExpired(sign(now.Add(-time.Minute)), now))
	require.True(t, TokenExpired("", now))
	require.True(t, TokenExpired("not.a.jwt", now))
}
