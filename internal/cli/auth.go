package cli

import (
	"context"
	"fmt"
	"time"

	"classbattle-client/internal/domain"
	"classbattle-client/internal/rest"
	"github.com/spf13/cobra"
)

func NewLoginCmd(configPath *string) *cobra.Command {
	var in domain.SignInRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				res, err := rt.api.SignIn(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Bienvenido, %s (%s)\n", res.User.Name, res.User.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	return cmd
}

func NewLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session stored on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				return rt.store.Clear(ctx)
			})
		},
	}
}

func NewWhoamiCmd(configPath *string) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				token, err := rt.store.Token(ctx)
				if err != nil {
					return err
				}
				if token == "" {
					return domain.ErrNotLoggedIn
				}
				if rest.TokenExpired(token, time.Now()) {
					return fmt.Errorf("session expired, run login again")
				}
				user, err := rt.currentUser(ctx)
				if refresh {
					user, err = rt.api.Me(ctx)
					if err == nil {
						err = rt.store.SetUser(ctx, user)
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s>\nrol: %s\npuntos: %d\n", user.Name, user.Lastname, user.Email, user.Role, user.Points)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the API")
	return cmd
}

func NewProfileCmd(configPath *string) *cobra.Command {
	var in domain.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentUser(ctx); err != nil {
					return err
				}
				user, err := rt.api.UpdateMe(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Perfil actualizado: %s %s\n", user.Name, user.Lastname)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "first name")
	cmd.Flags().StringVar(&in.Lastname, "lastname", "", "last name")
	cmd.Flags().StringVar(&in.Avatar, "avatar", "", "avatar URL")
	return cmd
}
