package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL string // あれば最優先
	DBSecretARN string // Secrets Manager上のDATABASE_URL

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	DBMaxOpenConns     int           // プール上限（10）
	DBMaxIdleConns     int           // アイドル上限
	DBConnMaxLifetime  time.Duration // 接続の寿命
	DBStatementTimeout time.Duration // 1Txの上限（5s）

	JWTSecret string        // JWT署名シークレット
	JWTTTL    time.Duration // アクセストークンの有効期限

	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error
	FEURL    string // CORS許可元

	AWSRegion        string
	AssetBucket      string // 空ならS3を使わない
	AssetsCDNBaseURL string // 公開URLのベース
	SESFromEmail     string // 空ならメールはログのみ
}

var defaults = map[string]interface{}{
	"PORT":                 "8080",
	"POSTGRES_USER":        "postgres",
	"POSTGRES_PASSWORD":    "postgres",
	"POSTGRES_DB":          "storefront",
	"POSTGRES_HOST":        "localhost",
	"POSTGRES_PORT":        5432,
	"POSTGRES_SSLMODE":     "disable",
	"DB_MAX_OPEN_CONNS":    10,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": "30m",
	"DB_STATEMENT_TIMEOUT": "5s",
	"JWT_TTL":              "24h",
	"GO_ENV":               "dev",
	"LOG_LEVEL":            "info",
	"FE_URL":               "*",
	"AWS_REGION":           "eu-central-1",
}

// Loadは .env → 環境変数 → デフォルト の順で読む
func Load() (Config, error) {
	// .envは無くてもよい
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port: v.GetString("PORT"),

		DatabaseURL: v.GetString("DATABASE_URL"),
		DBSecretARN: v.GetString("DB_SECRET_ARN"),

		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetInt("POSTGRES_PORT"),
		PostgresSSLMode:  v.GetString("POSTGRES_SSLMODE"),

		DBMaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime:  v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBStatementTimeout: v.GetDuration("DB_STATEMENT_TIMEOUT"),

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		GoEnv:    v.GetString("GO_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		FEURL:    v.GetString("FE_URL"),

		AWSRegion:        v.GetString("AWS_REGION"),
		AssetBucket:      v.GetString("ASSET_BUCKET"),
		AssetsCDNBaseURL: v.GetString("ASSETS_CDN_BASE_URL"),
		SESFromEmail:     v.GetString("SES_FROM_EMAIL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if cfg.DBStatementTimeout <= 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_TIMEOUT must be positive")
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be positive")
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.GoEnv == "prod" }

// サーバーのlisten addr
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
