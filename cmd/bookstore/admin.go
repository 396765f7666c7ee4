package main

import (
	"errors"
	"fmt"
	"os"

	"bookstore/internal/domain/model"
	infraRepo "bookstore/internal/infra/repository"
	auth "bookstore/internal/usecase/auth_usecase"
	"bookstore/internal/validator"

	"github.com/spf13/cobra"
)

// 管理者はAPIから作れないのでCLIで作る
func createAdminCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or ADMIN_PASSWORD) are required")
			}

			_, gdb, err := loadAndConnect()
			if err != nil {
				return err
			}

			uc := auth.NewRegisterUserUsecase(
				infraRepo.NewUserGormRepository(gdb),
				validator.NewAuthValidator(),
				auth.NewBcryptPasswordHasher(12),
				auth.SystemClock{},
			)
			out, err := uc.Execute(cmd.Context(), auth.RegisterUserInput{
				Name:            name,
				Email:           email,
				Password:        password,
				ConfirmPassword: password,
				Role:            model.RoleAdmin,
			})
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id=%d)\n", out.User.Email, out.User.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password (defaults to $ADMIN_PASSWORD)")

	return cmd
}
