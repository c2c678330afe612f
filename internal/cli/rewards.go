package cli

import (
	"context"
	"fmt"
	"io"

	"classbattle-client/internal/domain"
	"github.com/spf13/cobra"
)

func NewPointsCmd(configPath *string) *cobra.Command {
	var in domain.AssignPointsRequest
	assign := &cobra.Command{
		Use:   "assign",
		Short: "Give or take points from a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				if err := rt.api.AssignPoints(ctx, in); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%+d puntos asignados\n", in.Points)
				return nil
			})
		},
	}
	assign.Flags().StringVar(&in.StudentID, "student", "", "student id")
	assign.Flags().StringVar(&in.SubjectID, "subject", "", "subject id")
	assign.Flags().IntVar(&in.Points, "points", 0, "points, negative to subtract")
	assign.Flags().StringVar(&in.Reason, "reason", "", "reason shown to the student")

	cmd := &cobra.Command{
		Use:   "points",
		Short: "Manage student points",
	}
	cmd.AddCommand(assign)
	return cmd
}

func NewRewardsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewards",
		Short: "Manage rewards and redemptions",
	}

	var subjectID, teacherID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List rewards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentUser(ctx)
				if err != nil {
					return err
				}
				var rewards []domain.Reward
				switch {
				case subjectID != "":
					rewards, err = rt.api.SubjectRewards(ctx, subjectID)
				case teacherID != "":
					rewards, err = rt.api.RewardsByTeacher(ctx, teacherID)
				case user.IsTeacher():
					rewards, err = rt.api.TeacherRewards(ctx)
				default:
					return fmt.Errorf("use --subject or --teacher")
				}
				if err != nil {
					return err
				}
				printRewards(cmd.OutOrStdout(), rewards)
				return nil
			})
		},
	}
	list.Flags().StringVar(&subjectID, "subject", "", "rewards of a subject")
	list.Flags().StringVar(&teacherID, "teacher", "", "rewards of a teacher")

	var in domain.RewardInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				reward, err := rt.api.CreateReward(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recompensa creada: %s\n", reward.ID)
				return nil
			})
		},
	}
	rewardFlags(create, &in)

	var upd domain.RewardInput
	update := &cobra.Command{
		Use:   "update <reward-id>",
		Short: "Update a reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				_, err := rt.api.UpdateReward(ctx, args[0], upd)
				return err
			})
		},
	}
	rewardFlags(update, &upd)

	del := &cobra.Command{
		Use:   "delete <reward-id>",
		Short: "Delete a reward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				return rt.api.DeleteReward(ctx, args[0])
			})
		},
	}

	var redeemReq domain.RedeemRequest
	var direct bool
	redeem := &cobra.Command{
		Use:   "redeem <reward-id>",
		Short: "Ask for a reward in exchange for points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentUser(ctx); err != nil {
					return err
				}
				redeemReq.RewardID = args[0]
				submit := rt.api.CreateRedemption
				if direct {
					submit = rt.api.Redeem
				}
				redemption, err := submit(ctx, redeemReq)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Canje %s: %s\n", redemption.ID, redemption.Status)
				return nil
			})
		},
	}
	redeem.Flags().StringVar(&redeemReq.SubjectID, "subject", "", "subject whose points are spent")
	redeem.Flags().BoolVar(&direct, "direct", false, "redeem without teacher approval")

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List redemptions waiting for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				redemptions, err := rt.api.PendingRedemptions(ctx)
				if err != nil {
					return err
				}
				for _, r := range redemptions {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", r.ID, r.Student.Name, r.Reward.Name)
				}
				return nil
			})
		},
	}

	var decision domain.PendingDecision
	decide := &cobra.Command{
		Use:   "decide <redemption-id>",
		Short: "Approve or reject a pending redemption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				decision.RedemptionID = args[0]
				return rt.api.DecidePending(ctx, decision)
			})
		},
	}
	decide.Flags().StringVar(&decision.Status, "status", "approved", "approved or rejected")

	cmd.AddCommand(list, create, update, del, redeem, pending, decide)
	return cmd
}

func rewardFlags(cmd *cobra.Command, in *domain.RewardInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "reward name")
	cmd.Flags().StringVar(&in.Description, "description", "", "reward description")
	cmd.Flags().IntVar(&in.Cost, "cost", 0, "cost in points")
	cmd.Flags().StringVar(&in.SubjectID, "subject", "", "subject id")
}

func printRewards(w io.Writer, rewards []domain.Reward) {
	for _, r := range rewards {
		fmt.Fprintf(w, "%s\t%s\t%d pts\n", r.ID, r.Name, r.Cost)
	}
}

func NewAchievementsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentUser(ctx); err != nil {
					return err
				}
				achievements, err := rt.api.Achievements(ctx)
				if err != nil {
					return err
				}
				for _, a := range achievements {
					mark := " "
					if a.Unlocked {
						mark = "x"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", mark, a.Name)
				}
				return nil
			})
		},
	}
}
