package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/librarium/internal/services"
)

var (
	username   string
	email      string
	password   string
	staff      bool
	superuser  bool
	permission string
	roleName   string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff superuser with the Admin role",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := services.SuperuserInput{Username: username, Email: email, Password: password}
		// only pass the flags the operator actually set; false is rejected
		if cmd.Flags().Changed("staff") {
			in.IsStaff = &staff
		}
		if cmd.Flags().Changed("superuser") {
			in.IsSuperuser = &superuser
		}
		return withServices(cmd.Context(), func(svc *services.Services) error {
			u, err := svc.Users.CreateSuperuser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created (id %d)\n", u.Username, u.ID)
			return nil
		})
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant a named permission to a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), func(svc *services.Services) error {
			perms, err := svc.Users.GrantByUsername(cmd.Context(), username, permission)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now holds: %s\n", username, strings.Join(perms, ", "))
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "setrole",
	Short: "Set a user's profile role (Admin, Librarian or Member)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), func(svc *services.Services) error {
			u, err := svc.Users.SetRoleByUsername(cmd.Context(), username, roleName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Username, u.Profile.Role)
			return nil
		})
	},
}

var deleteUserCmd = &cobra.Command{
	Use:   "deleteuser",
	Short: "Delete a user with their posts, comments, grants and profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), func(svc *services.Services) error {
			if err := svc.Users.DeleteByUsername(cmd.Context(), username); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s deleted\n", username)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createSuperuserCmd, grantCmd, setRoleCmd, deleteUserCmd)

	createSuperuserCmd.Flags().StringVar(&username, "username", "", "Username")
	createSuperuserCmd.Flags().StringVar(&email, "email", "", "Email address")
	createSuperuserCmd.Flags().StringVar(&password, "password", "", "Password")
	createSuperuserCmd.Flags().BoolVar(&staff, "staff", true, "Staff flag (must stay true)")
	createSuperuserCmd.Flags().BoolVar(&superuser, "superuser", true, "Superuser flag (must stay true)")
	for _, f := range []string{"username", "email", "password"} {
		_ = createSuperuserCmd.MarkFlagRequired(f)
	}

	grantCmd.Flags().StringVar(&username, "username", "", "Username")
	grantCmd.Flags().StringVar(&permission, "perm", "", "Permission codename, e.g. catalog.can_add_book")
	_ = grantCmd.MarkFlagRequired("username")
	_ = grantCmd.MarkFlagRequired("perm")

	setRoleCmd.Flags().StringVar(&username, "username", "", "Username")
	setRoleCmd.Flags().StringVar(&roleName, "role", "", "Admin, Librarian or Member")
	_ = setRoleCmd.MarkFlagRequired("username")
	_ = setRoleCmd.MarkFlagRequired("role")

	deleteUserCmd.Flags().StringVar(&username, "username", "", "Username")
	_ = deleteUserCmd.MarkFlagRequired("username")
}
