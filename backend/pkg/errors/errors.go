// Package errors 仓储层通用错误
package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

	// ErrDuplicate 唯一约束冲突
	ErrDuplicate = errors.New("记录已存在")
)
