package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/aesthiq-api/internal/model"
	"github.com/jwalitptl/aesthiq-api/internal/repository"
	"github.com/jwalitptl/aesthiq-api/internal/repository/postgres"
	"github.com/jwalitptl/aesthiq-api/pkg/security"
)

type superAdminOptions struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

func newCreateSuperAdminCmd() *cobra.Command {
	var opts superAdminOptions

	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Create a platform super admin",
		RunE: runWithEnv(func(ctx context.Context, e *env, cmd *cobra.Command) error {
			users := postgres.NewUserRepository(postgres.NewBaseRepository(e.db))
			user, err := createSuperAdmin(ctx, users, security.NewBcryptHasher(e.cfg.Session.BcryptCost), opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created super admin %s (%s).\n", user.Username, user.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "login email")
	cmd.Flags().StringVar(&opts.Username, "username", "", "login username")
	cmd.Flags().StringVar(&opts.Password, "password", "", "initial password (min 8 characters)")
	cmd.Flags().StringVar(&opts.FirstName, "first-name", "Platform", "first name")
	cmd.Flags().StringVar(&opts.LastName, "last-name", "Admin", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// createSuperAdmin inserts a super_admin with no organization.
func createSuperAdmin(ctx context.Context, users repository.UserRepository, hasher security.PasswordHasher, opts superAdminOptions) (*model.User, error) {
	email := model.NormalizeEmail(opts.Email)
	username := strings.TrimSpace(opts.Username)
	if email == "" || username == "" {
		return nil, errors.New("email and username are required")
	}

	hash, err := hasher.Hash(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base:         model.NewBase(),
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(opts.FirstName),
		LastName:     strings.TrimSpace(opts.LastName),
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
		Status:       model.UserStatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("a user with email %s or username %s already exists", email, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
