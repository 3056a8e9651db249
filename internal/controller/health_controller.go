package controller

import (
	"context"
	"time"

	"learnly_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{DB: db, Redis: rdb}
}

// Health godoc
// @Summary 健康检查
// @Description 检查数据库和Redis连通性
// @Tags 系统
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 503 {object} util.Response "依赖不可用"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)}

	if sqlDB, err := c.DB.DB(); err != nil || sqlDB.PingContext(checkCtx) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		util.Error(ctx, 503, "service unhealthy")
		return
	}
	status["database"] = "ok"

	if c.Redis != nil {
		if err := c.Redis.Ping(checkCtx).Err(); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}

	util.Success(ctx, status)
}
