package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type secretPayload struct {
	DatabaseURL string `json:"DATABASE_URL"`
}

type secretsGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Secrets ManagerのJSONシークレットからDATABASE_URLを取る
type SecretsManagerResolver struct {
	client secretsGetter
}

func NewSecretsManagerResolver(awsCfg aws.Config) *SecretsManagerResolver {
	return &SecretsManagerResolver{client: secretsmanager.NewFromConfig(awsCfg)}
}

func (r *SecretsManagerResolver) DatabaseURL(ctx context.Context, secretARN string) (string, error) {
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretARN)})
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret has no string value")
	}

	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return "", fmt.Errorf("parse secret json: %w", err)
	}
	if payload.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL missing in secret")
	}
	return payload.DatabaseURL, nil
}
