package util

import "errors"

var (
	ErrUserNotFound     = errors.New("用户不存在")
	ErrEmailRegistered  = errors.New("该邮箱已被注册")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")

	ErrCourseNotFound    = errors.New("course not found")
	ErrUnitNotFound      = errors.New("unit not found for this course")
	ErrNotEnrolled       = errors.New("not enrolled in this course")
	ErrCourseNoUnits     = errors.New("this course has no units yet")
	ErrNoValidAnswers    = errors.New("no valid answers found")
	ErrPlanNotFound      = errors.New("no active plan found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrContentGenerating = errors.New("content is still generating, try again shortly")
	ErrInvalidInput      = errors.New("invalid input")
)
