package cli

import (
	"context"
	"fmt"

	"classbattle-client/internal/app"
	"classbattle-client/internal/infra/memory"
	"classbattle-client/internal/infra/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewBanksCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Manage question banks and publish them as subjects",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the banks saved in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}
				loader, done, err := openBankLoader(ctx, rt)
				if err != nil {
					return err
				}
				defer done()
				banks, err := loader.ListBanks(ctx, user.ID)
				if err != nil {
					return err
				}
				for _, b := range banks {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d preguntas\n", b.ID, b.Name, len(b.Questions))
				}
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Save a YAML bank into Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}
				_, bank, err := memory.LoadBankFile(args[0])
				if err != nil {
					return err
				}
				if bank.ID == args[0] {
					bank.ID = uuid.NewString()
				}
				bank.TeacherID = user.ID
				loader, done, err := openBankLoader(ctx, rt)
				if err != nil {
					return err
				}
				defer done()
				if err := loader.SaveBank(ctx, bank); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Banco guardado: %s\n", bank.ID)
				return nil
			})
		},
	}

	var fromFile string
	publish := &cobra.Command{
		Use:   "publish [bank-id]",
		Short: "Send a bank to the server as a new subject",
		Long:  "Send a bank to the server as a new subject. The bank comes from --file or, by id, from Postgres.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}

				var loader app.BankLoader
				var bankID string
				switch {
				case fromFile != "":
					fileLoader, bank, err := memory.LoadBankFile(fromFile)
					if err != nil {
						return err
					}
					loader, bankID = fileLoader, bank.ID
				case len(args) == 1:
					pg, done, err := openBankLoader(ctx, rt)
					if err != nil {
						return err
					}
					defer done()
					loader, bankID = pg, args[0]
				default:
					return errors.New("pass a bank id or --file")
				}

				client, err := rt.connect(ctx)
				if err != nil {
					return err
				}
				service := app.NewBankService(client, loader, rt.subjects, rt.requestTimeout(), rt.logger)
				subject, err := service.Create(ctx, bankID, user.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Materia creada: %s (%s)\n", subject.Name, subject.ID)
				return nil
			})
		},
	}
	publish.Flags().StringVar(&fromFile, "file", "", "YAML bank file")

	published := &cobra.Command{
		Use:   "published",
		Short: "List the subjects the server knows for this teacher",
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
				service := app.NewBankService(client, nil, rt.subjects, rt.requestTimeout(), rt.logger)
				subjects, err := service.MySubjects(ctx, user.ID)
				if err != nil {
					return err
				}
				printSubjects(cmd.OutOrStdout(), subjects)
				return nil
			})
		},
	}

	cmd.AddCommand(list, importCmd, publish, published)
	return cmd
}

func openBankLoader(ctx context.Context, rt *runtime) (*postgres.BankLoader, func(), error) {
	if rt.cfg.Postgres.URL == "" {
		return nil, nil, errors.New("postgres url not configured")
	}
	pool, err := pgxpool.Connect(ctx, rt.cfg.Postgres.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect postgres")
	}
	return postgres.NewBankLoader(pool), pool.Close, nil
}
