package main

import (
	"fmt"
	"log/slog"

	infraRepo "storefront/internal/infra/repository"
	auth "storefront/internal/usecase/auth_usecase"
	"storefront/internal/validator"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const (
	nameFlag     = "name"
	emailFlag    = "email"
	passwordFlag = "password"
)

var superAdminFlags = map[string]cobraflags.Flag{
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Value: "Super Admin",
		Usage: "Display name",
	},
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: "",
		Usage: "Login email (required)",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: "",
		Usage: "Initial password (required)",
	},
}

func newCreateSuperAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-superadmin",
		Short: "Create the first Super Admin account",
		RunE:  createSuperAdmin,
	}
	cobraflags.RegisterMap(cmd, superAdminFlags)
	return cmd
}

func createSuperAdmin(cmd *cobra.Command, _ []string) error {
	email := superAdminFlags[emailFlag].GetString()
	password := superAdminFlags[passwordFlag].GetString()
	if email == "" || password == "" {
		return fmt.Errorf("--%s and --%s are required", emailFlag, passwordFlag)
	}

	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	tx := infraRepo.NewTxManagerGorm(rt.db, rt.cfg.DBStatementTimeout, rt.log)
	uc := auth.NewCreateUserUsecase(tx, validator.NewAuthValidator(), auth.NewBcryptPasswordHasher(12), &realClock{})

	user, err := uc.Bootstrap(cmd.Context(), superAdminFlags[nameFlag].GetString(), email, password)
	if err != nil {
		return fmt.Errorf("create super admin: %w", err)
	}
	rt.log.Info("super admin created", slog.Int64("user_id", user.ID), slog.String("email", user.Email))
	return nil
}
