package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string
	Password string
}

type AccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  model.User  `json:"user"`
	Token AccessToken `json:"token"`
}

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(user model.User, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	tx        repository.TransactionManager
	validator Validator
	verifier  PasswordVerifier
	issuer    AccessTokenIssuer
	clock     Clock
}

// DI
func NewLoginUsecase(
	tx repository.TransactionManager,
	validator Validator,
	verifier PasswordVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
) *LoginUsecase {
	return &LoginUsecase{
		tx:        tx,
		validator: validator,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, error) {
	var out LoginOutput

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := u.validator.ValidateLogin(email, in.Password); err != nil {
		return out, err
	}

	now := u.clock.Now()
	var user model.User

	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		//emailでユーザー取得
		found, err := r.Users().FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}

		//停止ユーザーはログイン不可
		if !found.IsActive {
			return ErrUserInactive
		}

		//パスワード照合
		if !u.verifier.Verify(in.Password, found.PasswordHash) {
			return ErrInvalidCredentials
		}

		//最終ログイン時刻更新
		found.LastLoginAt = &now
		if err := r.Users().Update(ctx, found); err != nil {
			return err
		}
		user = *found
		return nil
	})
	if err != nil {
		return out, err
	}

	token, expiresAt, err := u.issuer.Issue(user, now)
	if err != nil {
		return out, err
	}

	out.User = user
	out.Token = AccessToken{
		AccessToken: token,
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
	}
	return out, nil
}
