package utils

import (
	"area-picker/internal/config"
	"area-picker/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：按配置打开 Redis 客户端；未启用时返回 nil，调用方据此跳过缓存
func OpenRedis(cfg config.Redis) *redis.Client {
	if !cfg.Enabled || cfg.Addr == "" {
		return nil
	}
	logger.L().Debug("redis_open", "addr", cfg.Addr, "db", cfg.DB)
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}
