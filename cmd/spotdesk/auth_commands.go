package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spotdesk/spotdesk-go/backend"
	"github.com/spotdesk/spotdesk-go/internal/utils"
	"github.com/spotdesk/spotdesk-go/users"
)

func loginCmd() *cobra.Command {
	var (
		email    string
		password string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the marketplace",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Initialize(cmd.Context())

			var rolePtr *users.RoleType
			if role != "" {
				rolePtr = utils.Ptr(users.RoleType(role))
			}
			user, err := a.session.Login(cmd.Context(), email, password, rolePtr)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", "", "account role when the email exists under several (consumer|brand_owner|staff)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd() *cobra.Command {
	var (
		name     string
		email    string
		password string
		role     string
		phone    string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a marketplace account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Initialize(cmd.Context())

			reg := backend.Registration{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     users.RoleType(role),
			}
			if phone != "" {
				reg.Phone = utils.Ptr(phone)
			}
			user, err := a.session.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().StringVar(&role, "role", string(users.RoleConsumer), "account role (consumer|brand_owner|staff)")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out, always succeeds even when the backend is unreachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Initialize(cmd.Context())
			a.session.Logout(cmd.Context())
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Initialize(cmd.Context())
			st := a.session.State()
			if !st.Authenticated() {
				fmt.Println("Not logged in")
				return nil
			}
			fmt.Printf("%s <%s> role=%s verified=%t\n", st.User.Name, st.User.Email, st.User.Role, st.User.Verified)
			return nil
		},
	}
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the account profile",
	}
	cmd.AddCommand(profileUpdateCmd())
	return cmd
}

func profileUpdateCmd() *cobra.Command {
	var (
		name   string
		avatar string
		phone  string
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields; unset flags are left untouched",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Initialize(cmd.Context())

			var update backend.ProfileUpdate
			if cmd.Flags().Changed("name") {
				update.Name = utils.Ptr(name)
			}
			if cmd.Flags().Changed("avatar") {
				update.Avatar = utils.Ptr(avatar)
			}
			if cmd.Flags().Changed("phone") {
				update.Phone = utils.Ptr(phone)
			}
			user, err := a.session.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			fmt.Printf("Profile updated: %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	return cmd
}

func forgotPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			msg, err := a.session.ForgotPassword(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var (
		token    string
		password string
	)
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Complete a password reset with the emailed token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			msg, err := a.session.ResetPassword(cmd.Context(), token, password)
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "reset token from the email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
