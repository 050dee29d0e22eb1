package usecase

import (
	"context"
	"log/slog"
	"time"
)

// 画像・ロゴ・プレビューの保存先
type AssetStore interface {
	Upload(ctx context.Context, folder, filename, contentType string, body []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// トランザクションメール
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// アップロードされたファイル
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

const (
	folderProducts       = "products"
	folderLogos          = "logos"
	folderCustomizations = "customizations"
)

// 外部連携の失敗はログだけ残して握りつぶす
func logCollaborator(ctx context.Context, log *slog.Logger, op string, err error, attrs ...slog.Attr) {
	if err == nil {
		return
	}
	args := []any{slog.String("kind", string(KindCollaborator)), slog.String("op", op), slog.String("error", err.Error())}
	for _, a := range attrs {
		args = append(args, a)
	}
	log.WarnContext(ctx, "collaborator failure", args...)
}

// commit後（またはrollback後の後始末）に呼ぶ
func deleteAssets(ctx context.Context, log *slog.Logger, store AssetStore, urls []string) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		logCollaborator(ctx, log, "asset.delete", store.Delete(ctx, u), slog.String("url", u))
	}
}

// アップロード済みのURLを返す。途中で失敗したら上げた分を消す
func uploadAll(ctx context.Context, log *slog.Logger, store AssetStore, folder string, files []FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		url, err := store.Upload(ctx, folder, f.Filename, f.ContentType, f.Data)
		if err != nil {
			deleteAssets(ctx, log, store, urls)
			return nil, &Error{Kind: KindCollaborator, Message: "asset upload failed", Err: err}
		}
		urls = append(urls, url)
	}
	return urls, nil
}
