package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	//一意制約違反
	ErrConflict = errors.New("conflict")

	//ロック待ち・タイムアウト。リトライ可能
	ErrLockTimeout = errors.New("lock timeout")

	//外部キー違反。参照中の行を消そうとした、または参照先が消えていた
	ErrReferenced = errors.New("referenced")
)
