package controller

import (
	"errors"
	"net/http/httptest"
	"testing"

	"learnly_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func scopeContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", "/api/plans/active"+query, nil)
	return ctx
}

func TestCourseScope(t *testing.T) {
	// 缺省为全局范围
	scope, err := courseScope(scopeContext(t, ""))
	if err != nil || scope != nil {
		t.Errorf("empty courseId: scope=%v err=%v, want nil/nil", scope, err)
	}

	scope, err = courseScope(scopeContext(t, "?courseId=12"))
	if err != nil || scope == nil || *scope != 12 {
		t.Errorf("courseId=12: scope=%v err=%v", scope, err)
	}

	// 传了但解析失败必须报参数错误，不能降级为全局范围
	for _, raw := range []string{"abc", "-3", "0"} {
		if _, err := courseScope(scopeContext(t, "?courseId="+raw)); !errors.Is(err, util.ErrInvalidInput) {
			t.Errorf("courseId=%s: err = %v, want ErrInvalidInput", raw, err)
		}
	}
}
