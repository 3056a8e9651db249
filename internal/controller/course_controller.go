package controller

import (
	"learnly_backend/internal/repository"
	"learnly_backend/internal/service"
	"learnly_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService      *service.CourseService
	ProgressionService *service.ProgressionService
	UserRepo           *repository.UserRepository
}

func NewCourseController(courseService *service.CourseService, progressionService *service.ProgressionService, userRepo *repository.UserRepository) *CourseController {
	return &CourseController{
		CourseService:      courseService,
		ProgressionService: progressionService,
		UserRepo:           userRepo,
	}
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 管理员建课，可附带初始单元
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateCourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Course} "成功"
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.List()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情（含单元）
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Description 管理员删除课程及其全部单元
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// swagger:model EnrollRequest
type EnrollRequest struct {
	Beginner bool `json:"beginner"`
}

// Enroll godoc
// @Summary 选课
// @Description 创建选课记录；beginner 为 true 时免摸底测试。重复选课返回已有记录
// @Tags 课程进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body EnrollRequest false "选课选项"
// @Success 200 {object} util.Response{data=model.CourseEnrollment} "已存在"
// @Success 201 {object} util.Response{data=model.CourseEnrollment} "创建成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	_ = ctx.ShouldBindJSON(&req)

	enrollment, existing, err := c.ProgressionService.Enroll(claims.UserID, util.MustParseUint(ctx.Param("id")), req.Beginner)
	if err != nil {
		respondError(ctx, err)
		return
	}

	if existing {
		util.Success(ctx, enrollment)
		return
	}
	util.Created(ctx, enrollment)
}

// Outline godoc
// @Summary 课程大纲
// @Description 单元列表及 locked/current/completed 状态
// @Tags 课程进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.OutlineResponse} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/outline [get]
func (c *CourseController) Outline(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.ProgressionService.Outline(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// NextUnit godoc
// @Summary 当前学习单元
// @Description 摸底未完成时返回摸底题；否则返回当前单元的讲解、测验题和闪卡；
// @Description 学完全部单元时返回结课标记
// @Tags 课程进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.NextUnitResponse} "成功"
// @Failure 400 {object} util.Response "未选课"
// @Failure 503 {object} util.Response "内容生成中，请稍后重试"
// @Router /api/courses/{id}/next [get]
func (c *CourseController) NextUnit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.ProgressionService.NextUnit(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// swagger:model QuizSubmitRequest
type QuizSubmitRequest struct {
	Answers []service.AnswerInput `json:"answers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary 提交单元测验
// @Description 判分并推进进度。通过且提交的正是当前单元时进度加1
// @Tags 课程进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   unitId path int true "单元ID"
// @Param   body body QuizSubmitRequest true "作答列表"
// @Success 200 {object} util.Response{data=service.QuizSubmitResult} "成功"
// @Failure 400 {object} util.Response "无有效作答"
// @Failure 404 {object} util.Response "单元不存在"
// @Router /api/courses/{id}/units/{unitId}/quiz [post]
func (c *CourseController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req QuizSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressionService.SubmitUnitQuiz(
		claims.UserID,
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("unitId")),
		req.Answers,
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// GetPlacement godoc
// @Summary 获取摸底测试
// @Description 已完成时返回缓存的成绩，未完成时返回题目（不含答案）
// @Tags 课程进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.PlacementTestResponse} "成功"
// @Failure 400 {object} util.Response "未选课"
// @Failure 503 {object} util.Response "题目生成中，请稍后重试"
// @Router /api/courses/{id}/placement [get]
func (c *CourseController) GetPlacement(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	resp, err := c.ProgressionService.PlacementTest(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// SubmitPlacement godoc
// @Summary 提交摸底测试
// @Description 只判分一次，重复提交返回首次成绩
// @Tags 课程进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body QuizSubmitRequest true "作答列表"
// @Success 200 {object} util.Response{data=service.PlacementSubmitResult} "成功"
// @Failure 400 {object} util.Response "无有效作答"
// @Router /api/courses/{id}/placement [post]
func (c *CourseController) SubmitPlacement(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req QuizSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressionService.SubmitPlacement(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("id")), req.Answers)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// MyEnrollments godoc
// @Summary 我的选课进度
// @Tags 课程进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EnrollmentItem} "成功"
// @Router /api/enrollments [get]
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.ProgressionService.MyEnrollments(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// CourseEnrollments godoc
// @Summary 课程选课学生列表
// @Description 管理员查看某课程全部学生的进度与画像
// @Tags 课程进度
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseEnrollmentsResponse} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/enrollments [get]
func (c *CourseController) CourseEnrollments(ctx *gin.Context) {
	resp, err := c.ProgressionService.CourseEnrollments(util.MustParseUint(ctx.Param("id")), c.UserRepo)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}
