package cli

import (
	"context"
	"fmt"
	"strings"

	"classbattle-client/internal/app"
	"classbattle-client/internal/battle"
	"classbattle-client/internal/domain"
	transport "classbattle-client/internal/transport/http"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewBattleCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battle",
		Short: "Play or host a quiz battle",
	}
	cmd.AddCommand(newBattleJoinCmd(configPath), newBattleHostCmd(configPath))
	return cmd
}

func newBattleJoinCmd(configPath *string) *cobra.Command {
	var code, name string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a battle room with its code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentUser(ctx)
				if err != nil {
					return err
				}
				if name == "" {
					name = user.Name
				}
				client, err := rt.connect(ctx)
				if err != nil {
					return err
				}

				res := app.NewJoiner(client, app.JoinSpecs(rt.cfg), rt.logger).Join(ctx, domain.JoinRequest{
					Code:        code,
					StudentID:   user.ID,
					StudentName: name,
					Game:        domain.GameBattle,
				})
				if !res.Success {
					return errors.New(res.Message)
				}

				player := battle.Player{RoomID: domain.NormalizeCode(code), StudentID: user.ID, Name: name}
				session := app.StartBattleSession(ctx, client, player, rt.sessionOptions())
				defer session.Close()

				reg := transport.NewRegistry()
				reg.Register("battle", session)
				defer startStatus(rt.cfg.Status.Addr, reg, rt.logger)()

				updates, cancel := session.Subscribe()
				defer cancel()
				return play(ctx, cmd, updates, renderBattle,
					func(st battle.State) bool { return st.Phase == battle.PhaseFinal },
					func(line string) error {
						st := session.Snapshot()
						if st.Question == nil {
							return errors.New("no hay pregunta activa")
						}
						texts := make([]string, len(st.Question.Question.Options))
						for i, o := range st.Question.Question.Options {
							texts[i] = o.Text
						}
						i, ok := pick(line, texts)
						if !ok {
							return errors.Errorf("opción inválida: %s", line)
						}
						return session.Select(ctx, st.Question.Question.Options[i].ID)
					})
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "room code")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the profile name")
	return cmd
}

func newBattleHostCmd(configPath *string) *cobra.Command {
	var subjectID string
	var questions, seconds int
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Open a battle room and control it",
		Long:  "Open a battle room and control it. Type n for the next question, e to end the battle, q to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}
				client, err := rt.connect(ctx)
				if err != nil {
					return err
				}

				control := app.StartControlSession(ctx, client, rt.sessionOptions())
				defer control.Close()

				room, err := control.Open(ctx, battle.CreateRoom{
					TeacherID:       user.ID,
					SubjectID:       subjectID,
					TotalQuestions:  questions,
					QuestionSeconds: seconds,
				}, rt.requestTimeout())
				if err != nil {
					return err
				}
				rt.rememberRoom(ctx, user.ID, room)
				fmt.Fprintf(cmd.OutOrStdout(), "Sala creada: %s\n", room.Code)

				reg := transport.NewRegistry()
				reg.Register("control", control)
				defer startStatus(rt.cfg.Status.Addr, reg, rt.logger)()

				updates, cancel := control.Subscribe()
				defer cancel()
				return play(ctx, cmd, updates, renderControl,
					func(st battle.ControlState) bool { return st.Phase == battle.ControlSummary },
					func(line string) error {
						switch line {
						case "n":
							return control.StartQuestion(ctx)
						case "e":
							return control.EndBattle(ctx)
						}
						return errors.Errorf("comando desconocido: %s", line)
					})
			})
		},
	}
	cmd.Flags().StringVar(&subjectID, "subject", "", "subject whose questions are played")
	cmd.Flags().IntVar(&questions, "questions", 0, "number of questions, 0 for the whole subject")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "seconds per question, defaults to game.questionSeconds")
	return cmd
}

func renderBattle(st battle.State) string {
	var b strings.Builder
	if st.Disconnected {
		b.WriteString("[Desconectado] ")
	}
	switch st.Phase {
	case battle.PhaseWaiting:
		b.WriteString("Esperando a que empiece la batalla...")
	case battle.PhaseQuestion, battle.PhaseLocked:
		q := st.Question
		if q == nil {
			break
		}
		fmt.Fprintf(&b, "Pregunta %d/%d (%ds): %s", q.Index+1, q.Total, st.Remaining, q.Question.Text)
		for i, o := range q.Question.Options {
			mark := " "
			if o.ID == st.Selected {
				mark = ">"
			}
			fmt.Fprintf(&b, "\n %s %d) %s", mark, i+1, o.Text)
		}
		if st.Phase == battle.PhaseLocked {
			b.WriteString("\nRespuesta enviada")
			if st.Acknowledged {
				b.WriteString(" y recibida")
			}
		}
	case battle.PhaseFeedback:
		if st.Feedback != nil && st.Feedback.Correct {
			fmt.Fprintf(&b, "¡Correcto! +%d", st.Feedback.Points)
		} else {
			b.WriteString("Incorrecto")
		}
		fmt.Fprintf(&b, " | puntaje: %d", st.Score)
	case battle.PhasePodium:
		b.WriteString("Podio")
		writeRanking(&b, st.Ranking)
	case battle.PhaseFinal:
		if st.Outcome == battle.OutcomeWinner {
			b.WriteString("¡Ganaste! Quedaste en el podio.")
		} else {
			b.WriteString("Fin de la batalla. ¡Sigue practicando!")
		}
		fmt.Fprintf(&b, " Puntaje final: %d", st.Score)
	}
	return b.String()
}

func renderControl(st battle.ControlState) string {
	var b strings.Builder
	if st.Disconnected {
		b.WriteString("[Desconectado] ")
	}
	switch st.Phase {
	case battle.ControlInit:
		b.WriteString("Creando sala...")
	case battle.ControlLobby:
		fmt.Fprintf(&b, "Sala %s | %d estudiantes conectados", st.Room.Code, len(st.Students))
		for _, s := range st.Students {
			fmt.Fprintf(&b, "\n  - %s", s.Name)
		}
	case battle.ControlQuestion:
		fmt.Fprintf(&b, "Pregunta %d | %ds | respuestas %d/%d", st.QuestionIndex+1, st.Remaining, st.AnswersReceived, len(st.Students))
		if st.AllAnswered() {
			b.WriteString(" | todos respondieron")
		}
	case battle.ControlResults:
		fmt.Fprintf(&b, "Resultados de la pregunta %d", st.QuestionIndex+1)
		for i, e := range st.Standings {
			fmt.Fprintf(&b, "\n  %d. %s %d", i+1, e.Name, e.Score)
		}
	case battle.ControlPodium:
		b.WriteString("Podio")
		writeRanking(&b, st.Ranking)
	case battle.ControlSummary:
		b.WriteString("Batalla terminada")
		writeRanking(&b, st.Ranking)
	}
	return b.String()
}

func writeRanking(b *strings.Builder, r *domain.Ranking) {
	if r == nil {
		return
	}
	entries := r.Full
	if len(entries) == 0 {
		entries = r.Podium
	}
	for i, e := range entries {
		fmt.Fprintf(b, "\n  %d. %s %d", i+1, e.Name, e.Score)
	}
}
