package controller

import (
	"context"
	"net/http"
	"time"

	"pairjudge_backend/internal/util"

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

// @Summary 健康检查
// @Description 检查数据库与 Redis 连接状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{"database": "up", "redis": "up"}
	healthy := true

	if sqlDB, err := c.DB.DB(); err != nil || sqlDB.Ping() != nil {
		components["database"] = "down"
		healthy = false
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	if c.Redis.Ping(pingCtx).Err() != nil {
		components["redis"] = "down"
		healthy = false
	}

	if !healthy {
		util.Error(ctx, http.StatusServiceUnavailable, "dependency unavailable")
		return
	}
	util.Success(ctx, gin.H{"status": "ok", "components": components})
}
