package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 错误分类：handler 层用 errors.Is 统一映射为 HTTP 状态码。
// 任何失败都只影响当前请求，不做自动重试。
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUpstream           = errors.New("upstream service failed")
)

// 存储层的两种"不存在"内部可区分，对外都映射为 not found
var (
	ErrObjectNotFound = fmt.Errorf("%w: object missing in storage", ErrNotFound)
	ErrPolicyNotFound = fmt.Errorf("%w: no acl policy for object", ErrNotFound)
)

// translateDBError 将 gorm 错误归入上面的分类
func translateDBError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
