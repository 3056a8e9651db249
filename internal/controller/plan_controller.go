package controller

import (
	"learnly_backend/internal/service"
	"learnly_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlanController struct {
	PlanService *service.PlanService
}

func NewPlanController(planService *service.PlanService) *PlanController {
	return &PlanController{PlanService: planService}
}

// courseScope 可选的 courseId 查询参数，缺省表示全局计划范围。
// 传了但解析不出来是参数错误，不能悄悄落到全局范围
func courseScope(ctx *gin.Context) (*uint, error) {
	raw := ctx.Query("courseId")
	if raw == "" {
		return nil, nil
	}
	id := util.MustParseUint(raw)
	if id == 0 {
		return nil, util.ErrInvalidInput
	}
	return &id, nil
}

// GeneratePlan godoc
// @Summary 生成学习计划
// @Description 生成确定性的按天任务计划并原子地归档同范围旧计划。
// @Description 带 courseId 时从选课进度的当前单元排起
// @Tags 学习计划
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GeneratePlanRequest true "计划参数"
// @Success 201 {object} util.Response{data=service.PlanResponse} "创建成功"
// @Failure 400 {object} util.Response "课程没有单元或参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/plans [post]
func (c *PlanController) GeneratePlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GeneratePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.PlanService.GeneratePlan(claims.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, resp)
}

// ActivePlan godoc
// @Summary 当前活动计划
// @Description 返回范围内的活动计划、任务、统计和下一个任务。
// @Description 读取时把过期仍 pending 的任务标记为 missed
// @Tags 学习计划
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query int false "课程ID，缺省为全局计划"
// @Success 200 {object} util.Response{data=service.PlanResponse} "成功（无计划时 plan 为 null）"
// @Failure 400 {object} util.Response "courseId 不合法"
// @Router /api/plans/active [get]
func (c *PlanController) ActivePlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	scope, err := courseScope(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	resp, err := c.PlanService.ActivePlan(claims.UserID, scope)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Reschedule godoc
// @Summary 补课调度
// @Description 把 missed 任务顺延到今天起第一个有容量的日期，任务只移动不增删
// @Tags 学习计划
// @Produce  json
// @Security ApiKeyAuth
// @Param   courseId query int false "课程ID，缺省为全局计划"
// @Success 200 {object} util.Response{data=service.RescheduleResult} "成功"
// @Failure 400 {object} util.Response "courseId 不合法"
// @Failure 404 {object} util.Response "没有活动计划"
// @Router /api/plans/reschedule [post]
func (c *PlanController) Reschedule(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	scope, err := courseScope(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	resp, err := c.PlanService.Reschedule(claims.UserID, scope)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// CompleteTask godoc
// @Summary 完成任务
// @Description 完成任务并盖时间戳；quiz 类任务同步推进对应课程进度
// @Tags 学习计划
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Success 200 {object} util.Response{data=model.LearningPlanTask} "成功"
// @Failure 403 {object} util.Response "不是自己的任务"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{id}/complete [post]
func (c *PlanController) CompleteTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.PlanService.CompleteTask(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, task)
}

// SkipTask godoc
// @Summary 跳过任务
// @Description 跳过不算完成，不推进课程进度
// @Tags 学习计划
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Success 200 {object} util.Response{data=model.LearningPlanTask} "成功"
// @Failure 403 {object} util.Response "不是自己的任务"
// @Failure 404 {object} util.Response "任务不存在"
// @Router /api/tasks/{id}/skip [post]
func (c *PlanController) SkipTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	task, err := c.PlanService.SkipTask(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, task)
}
