package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pequemaths/pequemaths-api/internal/domain"
)

func newRoleCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Inspect or change a user's role",
	}
	cmd.AddCommand(newRoleGetCmd(open), newRoleSetCmd(open))
	return cmd
}

func newRoleGetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "get <uid>",
		Short: "Print the role of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRoles(cmd, open, func(ctx context.Context, roles RoleManager) error {
				role, ok := roles.GetRole(ctx, args[0])
				if !ok {
					// no record, or unreadable: treated as a regular user everywhere
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (no profile record)\n", args[0], domain.RoleUsuario)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[0], role)
				return nil
			})
		},
	}
}

func newRoleSetCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set <uid> <admin|usuario>",
		Short: "Change the role of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := domain.ParseRoleStrict(args[1])
			if !ok {
				return fmt.Errorf("invalid role %q: must be %s or %s", args[1], domain.RoleAdmin, domain.RoleUsuario)
			}
			return withRoles(cmd, open, func(ctx context.Context, roles RoleManager) error {
				profile, err := roles.UpdateRole(ctx, flagActor, args[0], role)
				if err != nil {
					return fmt.Errorf("set role for %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", profile.UID, profile.Role)
				return nil
			})
		},
	}
}
