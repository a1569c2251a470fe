package engine

import (
	"errors"
	"fmt"
)

// ── 引擎错误 ──
//
// 引擎从不记录日志也不拼装面向用户的提示，只返回结构化错误；
// 调用方通过 errors.Is / errors.As 区分并自行格式化。

var (
	ErrValidation      = errors.New("参数校验失败")
	ErrNoSlotAvailable = errors.New("本周无可用时段")
	ErrNotFound        = errors.New("记录不存在")
	ErrSlotConflict    = errors.New("目标时段存在冲突")
)

// ValidationError 缺少必填项或格式错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NoSlotError 搜索耗尽整周仍无可用时段
type NoSlotError struct {
	Reason string
}

func (e *NoSlotError) Error() string { return e.Reason }

func (e *NoSlotError) Unwrap() error { return ErrNoSlotAvailable }

// NotFoundError 引用的教师 / 教室 / 学生 / 课程不存在
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q 不存在", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError 提交时目标时段已被某门课程占用
type ConflictError struct {
	Participant Participant
	LectureID   string
	Span        TimeSpan
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q 在 %s 已有课程 %s", e.Participant.Kind, e.Participant.ID, e.Span, e.LectureID)
}

func (e *ConflictError) Unwrap() error { return ErrSlotConflict }

// withField 为校验错误补充字段名
func withField(err error, field string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return &ValidationError{Field: field, Message: ve.Message}
	}
	return err
}
