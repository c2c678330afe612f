package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"classbattle-client/internal/battle"
	"classbattle-client/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "s1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	r := chi.NewRouter()
	r.Post("/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.SignInResponse{
			Token: token,
			User:  domain.User{ID: "s1", Name: "Ana", Email: "ana@example.com", Role: "student"},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	t.Setenv("CLASSBATTLE_API_URL", srv.URL)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDIS_ADDR", "")

	out, err := runCLI(t, "login", "--email", "ana@example.com", "--password", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Bienvenido, Ana") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = runCLI(t, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "ana@example.com") || !strings.Contains(out, "rol: student") {
		t.Fatalf("unexpected whoami output %q", out)
	}

	if _, err := runCLI(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := runCLI(t, "whoami"); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected not logged in after logout, got %v", err)
	}
}

func TestHostCommandsNeedTeacher(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.SignInResponse{
			Token: signedToken(t, time.Now().Add(time.Hour)),
			User:  domain.User{ID: "s1", Name: "Ana", Role: "student"},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	t.Setenv("CLASSBATTLE_API_URL", srv.URL)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REDIS_ADDR", "")

	if _, err := runCLI(t, "login", "--email", "ana@example.com", "--password", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err := runCLI(t, "battle", "host", "--subject", "math")
	if err == nil || !strings.Contains(err.Error(), "teacher") {
		t.Fatalf("expected teacher-only error, got %v", err)
	}
}

func TestPlayPrintsEachDistinctView(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))

	updates := make(chan int, 4)
	for _, v := range []int{1, 1, 2, 3} {
		updates <- v
	}
	render := func(v int) string { return "view " + string(rune('0'+v)) }
	done := func(v int) bool { return v == 3 }

	if err := play(context.Background(), cmd, updates, render, done, func(string) error { return nil }); err != nil {
		t.Fatalf("play: %v", err)
	}
	if got := out.String(); got != "view 1\nview 2\nview 3\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPlayRoutesInputUntilQuit(t *testing.T) {
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("1\n\nbad\nq\nnever\n"))

	var handled []string
	handle := func(line string) error {
		handled = append(handled, line)
		if line == "bad" {
			return errors.New("opción inválida: bad")
		}
		return nil
	}
	updates := make(chan int)
	if err := play(context.Background(), cmd, updates, func(int) string { return "" }, never[int], handle); err != nil {
		t.Fatalf("play: %v", err)
	}
	if strings.Join(handled, ",") != "1,bad" {
		t.Fatalf("unexpected handled lines %v", handled)
	}
	if !strings.Contains(errOut.String(), "opción inválida") {
		t.Fatalf("expected handler error on stderr, got %q", errOut.String())
	}
}

func TestPick(t *testing.T) {
	choices := []string{"Rojo", "Azul", "Verde"}
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 1, true},
		{"verde", 2, true},
		{"4", 0, false},
		{"0", 0, false},
		{"negro", 0, false},
	}
	for _, tc := range cases {
		got, ok := pick(tc.in, choices)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("pick(%q) = %d,%v want %d,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRenderBattle(t *testing.T) {
	st := battle.NewState(battle.Player{Name: "Ana"})
	if got := renderBattle(st); !strings.Contains(got, "Esperando") {
		t.Fatalf("unexpected waiting view %q", got)
	}

	st.Phase = battle.PhaseLocked
	st.Disconnected = true
	st.Remaining = 7
	st.Selected = "b"
	st.Question = &domain.QuestionSnapshot{
		Index: 0,
		Total: 3,
		Question: domain.Question{Text: "2+2", Options: []domain.Option{
			{ID: "a", Text: "3"},
			{ID: "b", Text: "4"},
		}},
	}
	got := renderBattle(st)
	for _, want := range []string{"[Desconectado]", "Pregunta 1/3 (7s): 2+2", "> 2) 4", "Respuesta enviada"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}

	st = battle.State{Phase: battle.PhaseFinal, Outcome: battle.OutcomeWinner, Score: 30}
	if got := renderBattle(st); !strings.Contains(got, "Ganaste") || !strings.Contains(got, "30") {
		t.Fatalf("unexpected final view %q", got)
	}
}
