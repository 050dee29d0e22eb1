package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/access"
	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ユーザー作成の入力
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	OrgID    *int64
}

var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrOrgRequired        = errors.New("organization is required")
	ErrOrgNotFound        = errors.New("organization not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 入力チェックの約束（validatorパッケージが実装）
type Validator interface {
	ValidateCreateUser(email, password string) error
	ValidateLogin(email, password string) error
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type CreateUserUsecase struct {
	tx        repository.TransactionManager
	validator Validator
	hasher    PasswordHasher
	clock     Clock
}

// DI
func NewCreateUserUsecase(
	tx repository.TransactionManager,
	validator Validator,
	hasher PasswordHasher,
	clock Clock,
) *CreateUserUsecase {
	return &CreateUserUsecase{
		tx:        tx,
		validator: validator,
		hasher:    hasher,
		clock:     clock,
	}
}

// SuperAdminは任意のrole・org、Adminは自orgのManager/Userだけ作れる
func (u *CreateUserUsecase) Execute(ctx context.Context, caller access.Caller, in CreateUserInput) (model.User, error) {
	if !in.Role.Valid() {
		return model.User{}, ErrInvalidRole
	}
	switch caller.Role {
	case model.RoleSuperAdmin:
	case model.RoleAdmin:
		if in.Role != model.RoleManager && in.Role != model.RoleUser {
			return model.User{}, ErrForbidden
		}
		in.OrgID = caller.OrgID
	default:
		return model.User{}, ErrForbidden
	}
	return u.create(ctx, in)
}

// CLIから最初のSuperAdminを作る
func (u *CreateUserUsecase) Bootstrap(ctx context.Context, name, email, password string) (model.User, error) {
	return u.create(ctx, CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     model.RoleSuperAdmin,
	})
}

func (u *CreateUserUsecase) create(ctx context.Context, in CreateUserInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := u.validator.ValidateCreateUser(email, in.Password); err != nil {
		return model.User{}, err
	}
	// SuperAdmin以外はorg必須
	if in.Role != model.RoleSuperAdmin && in.OrgID == nil {
		return model.User{}, ErrOrgRequired
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, err
	}

	now := u.clock.Now()
	user := model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         in.Role,
		OrgID:        in.OrgID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		// email重複チェック
		if _, err := r.Users().FindByEmail(ctx, email); err == nil {
			return ErrEmailAlreadyExists
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if in.OrgID != nil {
			if _, err := r.Organizations().FindByID(ctx, *in.OrgID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrOrgNotFound
				}
				return err
			}
		}

		if err := r.Users().Create(ctx, &user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailAlreadyExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
