package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/access"
	repo "storefront/internal/repository"
)

// エラーの種類。handlerがHTTPステータスに変換する
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindBusinessRule  ErrorKind = "business_rule"
	KindTransaction   ErrorKind = "transaction_failure"
	KindCollaborator  ErrorKind = "collaborator_failure"
)

// 業務ルール違反のコード
const CodeNoItemsInCart = "NoItemsInCart"

type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	// NotFoundのとき見つからなかった参照
	Missing []string
	// TransactionFailureのときだけ意味がある
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func AsError(err error) (*Error, bool) {
	var ue *Error
	ok := errors.As(err, &ue)
	return ue, ok
}

func IsKind(err error, kind ErrorKind) bool {
	ue, ok := AsError(err)
	return ok && ue.Kind == kind
}

func validationError(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func notFound(msg string, missing ...string) error {
	if len(missing) > 0 {
		msg = msg + ": " + strings.Join(missing, ", ")
	}
	return &Error{Kind: KindNotFound, Message: msg, Missing: missing}
}

func conflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func businessRule(code, msg string) error {
	return &Error{Kind: KindBusinessRule, Code: code, Message: msg}
}

// ロック待ち・タイムアウトはリトライ可能
func txFailure(err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := AsError(err); ok {
		return ue
	}
	if errors.Is(err, repo.ErrReferenced) {
		return &Error{Kind: KindConflict, Message: "still referenced by other rows", Err: err}
	}
	retryable := errors.Is(err, repo.ErrLockTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
	return &Error{Kind: KindTransaction, Message: "db error", Retryable: retryable, Err: err}
}

// repositoryのエラーを種類に寄せる
func fromRepo(err error, what string) error {
	if err == nil {
		return nil
	}
	if ue, ok := AsError(err); ok {
		return ue
	}
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return notFound(what + " not found")
	case errors.Is(err, repo.ErrConflict):
		return &Error{Kind: KindConflict, Message: what + " already exists", Err: err}
	}
	return txFailure(err)
}

// 権限表で判定。ストアに触る前に呼ぶ
func authorize(c access.Caller, op access.Operation) error {
	if err := access.Authorize(c, op); err != nil {
		return &Error{Kind: KindAuthorization, Message: "forbidden", Err: err}
	}
	return nil
}
