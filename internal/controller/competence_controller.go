package controller

import (
	"strconv"

	"learnly_backend/internal/model"
	"learnly_backend/internal/service"
	"learnly_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CompetenceController struct {
	CompetenceService *service.CompetenceService
}

func NewCompetenceController(competenceService *service.CompetenceService) *CompetenceController {
	return &CompetenceController{CompetenceService: competenceService}
}

// GetCompetenceTest godoc
// @Summary 领取能力测试题
// @Description 按学科/主题/难度抽题，正确答案不下发
// @Tags 能力测试
// @Produce  json
// @Security ApiKeyAuth
// @Param   subject query string false "学科"
// @Param   topic query string false "主题"
// @Param   difficulty query string false "难度 easy|medium|hard"
// @Param   count query int false "题目数量，默认5，最多20"
// @Success 200 {object} util.Response{data=[]service.CompetenceQuestionView} "成功"
// @Failure 400 {object} util.Response "难度不合法"
// @Router /api/competence/test [get]
func (c *CompetenceController) GetCompetenceTest(ctx *gin.Context) {
	count, _ := strconv.Atoi(ctx.Query("count"))

	questions, err := c.CompetenceService.GetTest(
		ctx.Query("subject"),
		ctx.Query("topic"),
		ctx.Query("difficulty"),
		count,
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"questions": questions})
}

type submitCompetenceRequest struct {
	Subject string                `json:"subject" binding:"required"`
	Answers []service.AnswerInput `json:"answers" binding:"required,min=1"`
}

// SubmitCompetenceTest godoc
// @Summary 提交能力测试
// @Description 按难度加权判分（easy/medium/hard 计 1/1.5/2 分），
// @Description 结果写入学科能力档案并更新画像的最近能力分
// @Tags 能力测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body submitCompetenceRequest true "学科与作答"
// @Success 200 {object} util.Response{data=service.CompetenceResult} "评估结果"
// @Failure 400 {object} util.Response "没有有效作答"
// @Router /api/competence/test [post]
func (c *CompetenceController) SubmitCompetenceTest(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitCompetenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.CompetenceService.Submit(claims.UserID, req.Subject, req.Answers)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type generateCompetenceRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
	Count      int    `json:"count"`
}

// GenerateCompetenceQuestions godoc
// @Summary 生成能力测试题
// @Description 管理员按学科/主题/难度批量生成题目并入库
// @Tags 能力测试
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body generateCompetenceRequest true "生成参数"
// @Success 201 {object} util.Response{data=[]model.CompetenceQuestion} "已入库的题目"
// @Failure 400 {object} util.Response "参数错误"
// @Failure 503 {object} util.Response "内容生成中，请稍后重试"
// @Router /api/competence/questions [post]
func (c *CompetenceController) GenerateCompetenceQuestions(ctx *gin.Context) {
	var req generateCompetenceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, err := c.CompetenceService.GenerateQuestions(
		ctx.Request.Context(),
		req.Subject,
		req.Topic,
		model.Difficulty(req.Difficulty),
		req.Count,
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, questions)
}
