package cli

import (
	"context"
	"fmt"
	"io"

	"classbattle-client/internal/domain"
	"github.com/spf13/cobra"
)

func NewSubjectsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Manage subjects and enrollments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List subjects (teachers) or enrollments (students)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentUser(ctx)
				if err != nil {
					return err
				}
				if !user.IsTeacher() {
					enrollments, err := rt.api.StudentEnrollments(ctx)
					if err != nil {
						return err
					}
					for _, e := range enrollments {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d pts\n", e.SubjectID, e.Subject.Name, e.Points)
					}
					return nil
				}
				subjects, err := rt.subjects.Subjects(ctx, user.ID)
				if err != nil {
					return err
				}
				printSubjects(cmd.OutOrStdout(), subjects)
				return nil
			})
		},
	}

	var in domain.SubjectInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a subject",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}
				subject, err := rt.api.CreateSubject(ctx, in)
				if err != nil {
					return err
				}
				if err := rt.subjects.Invalidate(ctx, user.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Materia creada: %s (código %s)\n", subject.Name, subject.Code)
				return nil
			})
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "subject name")
	create.Flags().StringVar(&in.Description, "description", "", "subject description")

	del := &cobra.Command{
		Use:   "delete <subject-id>",
		Short: "Delete a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}
				if err := rt.api.DeleteSubject(ctx, args[0]); err != nil {
					return err
				}
				return rt.subjects.Invalidate(ctx, user.ID)
			})
		},
	}

	students := &cobra.Command{
		Use:   "students <subject-id>",
		Short: "List the students enrolled in a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentTeacher(ctx); err != nil {
					return err
				}
				enrollments, err := rt.api.SubjectEnrollments(ctx, args[0])
				if err != nil {
					return err
				}
				for _, e := range enrollments {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s %s\t%d pts\n", e.StudentID, e.Student.Name, e.Student.Lastname, e.Points)
				}
				return nil
			})
		},
	}

	join := &cobra.Command{
		Use:   "join <code>",
		Short: "Enroll in a subject with its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentUser(ctx); err != nil {
					return err
				}
				enrollment, err := rt.api.JoinSubject(ctx, domain.EnrollRequest{Code: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Inscrito en %s\n", enrollment.Subject.Name)
				return nil
			})
		},
	}

	leave := &cobra.Command{
		Use:   "leave <subject-id>",
		Short: "Leave a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				if _, err := rt.currentUser(ctx); err != nil {
					return err
				}
				return rt.api.LeaveSubject(ctx, args[0])
			})
		},
	}

	rooms := &cobra.Command{
		Use:   "rooms",
		Short: "Show the rooms recently opened from this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, configPath, func(ctx context.Context, rt *runtime) error {
				user, err := rt.currentTeacher(ctx)
				if err != nil {
					return err
				}
				rooms, err := rt.store.Rooms(ctx, user.ID)
				if err != nil {
					return err
				}
				for _, r := range rooms {
					fmt.Fprintln(cmd.OutOrStdout(), r.Code)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(list, create, del, students, join, leave, rooms)
	return cmd
}

func printSubjects(w io.Writer, subjects []domain.Subject) {
	for _, s := range subjects {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.Code)
	}
}
