package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// 永続化層の失敗。元のエラーはそのまま持つ。
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// 操作結果の種類。HTTPステータスへの変換はhandlerで1回だけ行う。
type Result int

const (
	ResultOK Result = iota
	ResultNotFound
	ResultInvalid
	ResultStorageError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultNotFound:
		return "not_found"
	case ResultInvalid:
		return "invalid"
	default:
		return "storage_error"
	}
}

// Classify はエラーを結果の種類に分ける。想定外のエラーはStorageError扱い。
func Classify(err error) Result {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrCartNotFound), errors.Is(err, ErrItemNotFound):
		return ResultNotFound
	case errors.Is(err, ErrInvalidArgument):
		return ResultInvalid
	default:
		return ResultStorageError
	}
}
