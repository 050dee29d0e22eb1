package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrNotConfigured = errors.New("asset storage not configured")

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// 画像・ロゴ・プレビューをS3に置く。公開URLは baseURL + "/" + key
type S3Store struct {
	client  s3API
	bucket  string
	baseURL string
}

// bucketが空なら無効（Uploadはエラー、Deleteは何もしない）
func NewS3Store(awsCfg aws.Config, bucket, cdnBaseURL string) *S3Store {
	if bucket == "" {
		return &S3Store{}
	}
	base := strings.TrimRight(cdnBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, awsCfg.Region)
	}
	return &S3Store{client: s3.NewFromConfig(awsCfg), bucket: bucket, baseURL: base}
}

func (s *S3Store) Enabled() bool { return s != nil && s.client != nil && s.bucket != "" }

func (s *S3Store) Upload(ctx context.Context, folder, filename, contentType string, body []byte) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}

	key := path.Join(folder, uuid.NewString()+"-"+sanitize(filename))
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// 自バケット以外のURLは無視する
func (s *S3Store) Delete(ctx context.Context, url string) error {
	if !s.Enabled() {
		return nil
	}
	key, ok := s.keyOf(url)
	if !ok {
		return nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (s *S3Store) keyOf(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}

func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	return name
}
