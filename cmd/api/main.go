package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	"storefront/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Multi-tenant merch catalog and order backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newCreateSuperAdminCommand())
	return root
}

// 各コマンド共通の準備
type app struct {
	cfg    config.Config
	log    *slog.Logger
	awsCfg aws.Config
	db     *gorm.DB
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var secrets db.SecretResolver
	if cfg.DBSecretARN != "" {
		secrets = db.NewSecretsManagerResolver(awsCfg)
	}
	gdb, err := db.Connect(ctx, cfg, secrets, log)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, log: log, awsCfg: awsCfg, db: gdb}, nil
}

func (r *app) Close() {
	sqlDB, err := r.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		r.log.Warn("db close failed", slog.String("error", err.Error()))
	}
}
