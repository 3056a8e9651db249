package database

import (
	"context"
	"fmt"
	"time"

	"learnly_backend/internal/config"
	"learnly_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis 建立连接并做一次Ping探活。Redis只承担内容缓存，
// 连不上时调用方可以选择降级为无缓存运行
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Log.Info("redis connection established", zap.String("addr", rdb.Options().Addr))
	return rdb, nil
}
