package controller

import (
	"errors"
	"learnly_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 领域错误到HTTP状态码的统一映射
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrInvalidInput), errors.Is(err, util.ErrNoValidAnswers):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrUnauthorized):
		util.Unauthorized(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrUnitNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrPlanNotFound),
		errors.Is(err, util.ErrTaskNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrNotEnrolled), errors.Is(err, util.ErrCourseNoUnits):
		util.Error(ctx, 400, err.Error())
	case errors.Is(err, util.ErrEmailRegistered):
		util.Error(ctx, 409, err.Error())
	case errors.Is(err, util.ErrContentGenerating):
		util.Retryable(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
