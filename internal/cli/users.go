package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

func newUsersCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user profile records",
	}
	cmd.AddCommand(newUsersListCmd(open), newUsersShowCmd(open))
	return cmd
}

func newUsersListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user profile records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoles(cmd, open, func(ctx context.Context, roles RoleManager) error {
				profiles, err := roles.ListProfiles(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(profiles) == 0 {
					fmt.Fprintln(out, "No users found.")
					return nil
				}

				fmt.Fprintf(out, "%-30s  %-8s  %-32s  %s\n", "UID", "ROLE", "EMAIL", "CREATED")
				fmt.Fprintf(out, "%-30s  %-8s  %-32s  %s\n", "---", "----", "-----", "-------")
				for _, p := range profiles {
					fmt.Fprintf(out, "%-30s  %-8s  %-32s  %s\n", p.UID, p.Role, p.Email, formatTime(&p.CreatedAt))
				}
				return nil
			})
		},
	}
}

func newUsersShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <uid>",
		Short: "Show one user profile record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoles(cmd, open, func(ctx context.Context, roles RoleManager) error {
				profile, err := roles.GetProfile(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get user %s: %w", args[0], err)
				}
				printProfile(cmd.OutOrStdout(), profile)
				return nil
			})
		},
	}
}

func printProfile(w io.Writer, p *domain.UserProfile) {
	fmt.Fprintf(w, "UID:          %s\n", p.UID)
	fmt.Fprintf(w, "Email:        %s\n", p.Email)
	fmt.Fprintf(w, "Display name: %s\n", deref(p.DisplayName))
	fmt.Fprintf(w, "Role:         %s\n", p.Role)
	fmt.Fprintf(w, "Name:         %s\n", deref(p.Name))
	fmt.Fprintf(w, "Picture:      %s\n", deref(p.Picture))
	fmt.Fprintf(w, "Created:      %s\n", formatTime(&p.CreatedAt))
	fmt.Fprintf(w, "Updated:      %s\n", formatTime(p.UpdatedAt))
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
