package cli

import (
	"context"
	"fmt"
	"strings"

	"classbattle-client/internal/allforall"
	"classbattle-client/internal/app"
	"classbattle-client/internal/domain"
	"classbattle-client/internal/protocol"
	transport "classbattle-client/internal/transport/http"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewAllForAllCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "allforall",
		Aliases: []string{"afa"},
		Short:   "Play or host the All-for-All color game",
	}
	cmd.AddCommand(newAllForAllJoinCmd(configPath), newAllForAllHostCmd(configPath))
	return cmd
}

func newAllForAllJoinCmd(configPath *string) *cobra.Command {
	var code, name string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join an All-for-All room",
		Long:  "Join an All-for-All room. Answer with the option number or its text, q to leave.",
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
					Game:        domain.GameAllForAll,
				})
				if !res.Success {
					return errors.New(res.Message)
				}

				player := allforall.Player{RoomID: domain.NormalizeCode(code), StudentID: user.ID, Name: name}
				session := app.StartAllForAllSession(ctx, client, player, rt.sessionOptions())
				defer session.Close()

				reg := transport.NewRegistry()
				reg.Register("allforall", session)
				defer startStatus(rt.cfg.Status.Addr, reg, rt.logger)()

				updates, cancel := session.Subscribe()
				defer cancel()
				return play(ctx, cmd, updates, renderAllForAll, never[allforall.State],
					func(line string) error {
						st := session.Snapshot()
						if st.Challenge == nil {
							return errors.New("espera la siguiente ronda")
						}
						i, ok := pick(line, st.Challenge.Options)
						if !ok {
							return errors.Errorf("opción inválida: %s", line)
						}
						return session.Press(ctx, st.Challenge.Options[i])
					})
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "room code")
	cmd.Flags().StringVar(&name, "name", "", "display name, defaults to the profile name")
	return cmd
}

func newAllForAllHostCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Open an All-for-All room",
		Long:  "Open an All-for-All room. Type s to start a round, r to reset it, q to leave.",
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

				host := app.StartAllForAllHost(ctx, client, rt.sessionOptions())
				defer host.Close()

				room, err := host.Open(ctx, user.ID, rt.requestTimeout())
				if err != nil {
					return err
				}
				rt.rememberRoom(ctx, user.ID, room)
				fmt.Fprintf(cmd.OutOrStdout(), "Sala creada: %s\n", room.Code)

				reg := transport.NewRegistry()
				reg.Register("allforall-host", host)
				defer startStatus(rt.cfg.Status.Addr, reg, rt.logger)()

				updates, cancel := host.Subscribe()
				defer cancel()
				return play(ctx, cmd, updates, renderHost, never[allforall.HostState],
					func(line string) error {
						switch line {
						case "s":
							return host.StartRound(ctx)
						case "r":
							return host.ResetRound(ctx)
						}
						return errors.Errorf("comando desconocido: %s", line)
					})
			})
		},
	}
}

func renderAllForAll(st allforall.State) string {
	var b strings.Builder
	if st.Disconnected {
		b.WriteString("[Desconectado] ")
	}
	switch st.Phase {
	case allforall.PhaseLobby:
		fmt.Fprintf(&b, "Esperando la siguiente ronda | puntaje: %d", st.Score)
	case allforall.PhasePlaying:
		c := st.Challenge
		if c == nil {
			break
		}
		ask := "el COLOR"
		if c.Mode == protocol.ModeText {
			ask = "la PALABRA"
		}
		fmt.Fprintf(&b, "%s escrita en %s (%ds). Elige %s:", strings.ToUpper(c.Word), c.Color, st.Remaining, ask)
		for i, o := range c.Options {
			fmt.Fprintf(&b, "\n  %d) %s", i+1, o)
		}
	case allforall.PhaseFeedback:
		f := st.Feedback
		switch {
		case f == nil:
		case f.TimedOut:
			fmt.Fprintf(&b, "¡Tiempo! Era %s", f.Expected)
		case f.Correct:
			b.WriteString("¡Correcto!")
		default:
			fmt.Fprintf(&b, "Incorrecto, era %s", f.Expected)
		}
		if f != nil && f.Provisional {
			b.WriteString(" (esperando al servidor)")
		}
		fmt.Fprintf(&b, " | puntaje: %d", st.Score)
	}
	return b.String()
}

func renderHost(st allforall.HostState) string {
	var b strings.Builder
	if st.Disconnected {
		b.WriteString("[Desconectado] ")
	}
	switch st.Phase {
	case allforall.HostClosed:
		b.WriteString("Abriendo sala...")
	case allforall.HostOpen, allforall.HostRound:
		fmt.Fprintf(&b, "Sala %s | %d jugadores | rondas: %d", st.Room.Code, len(st.Players), st.Rounds)
		if st.Phase == allforall.HostRound {
			b.WriteString(" | ronda en curso")
		}
	}
	return b.String()
}
