package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"storefront/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSNを外部（Secrets Manager）から取る約束
type SecretResolver interface {
	DatabaseURL(ctx context.Context, secretARN string) (string, error)
}

// Connect はDBに接続して *gorm.DB を返す。
// プールはプロセスで1つだけ作って使い回す
func Connect(ctx context.Context, cfg config.Config, secrets SecretResolver, log *slog.Logger) (*gorm.DB, error) {
	dsn, err := resolveDSN(ctx, cfg, secrets)
	if err != nil {
		return nil, err
	}
	dsn = withStatementTimeout(dsn, cfg)

	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if !cfg.IsProd() {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	gdb, err := gorm.Open(postgres.Open(dsn), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Info("db connected",
		slog.Int("max_open_conns", cfg.DBMaxOpenConns),
		slog.Duration("statement_timeout", cfg.DBStatementTimeout),
	)
	return gdb, nil
}

// DATABASE_URL → DB_SECRET_ARN → POSTGRES_* の順
func resolveDSN(ctx context.Context, cfg config.Config, secrets SecretResolver) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	if cfg.DBSecretARN != "" {
		if secrets == nil {
			return "", fmt.Errorf("DB_SECRET_ARN set but no secret resolver")
		}
		return secrets.DatabaseURL(ctx, cfg.DBSecretARN)
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	), nil
}

// セッション単位のstatement_timeout / lock_timeoutを付ける
func withStatementTimeout(dsn string, cfg config.Config) string {
	ms := cfg.DBStatementTimeout.Milliseconds()
	if ms <= 0 {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		if q.Get("statement_timeout") == "" {
			q.Set("statement_timeout", fmt.Sprint(ms))
		}
		if q.Get("lock_timeout") == "" {
			q.Set("lock_timeout", fmt.Sprint(ms))
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	if !strings.Contains(dsn, "statement_timeout=") {
		dsn += fmt.Sprintf(" statement_timeout=%d", ms)
	}
	if !strings.Contains(dsn, "lock_timeout=") {
		dsn += fmt.Sprintf(" lock_timeout=%d", ms)
	}
	return dsn
}
