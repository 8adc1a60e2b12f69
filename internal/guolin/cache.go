package guolin

import (
	"context"
	"errors"
	"time"

	"area-picker/internal/ingest"
	"area-picker/internal/logger"
	"area-picker/internal/metrics"
	"area-picker/internal/region"

	"github.com/redis/go-redis/v9"
)

const payloadKeyPrefix = "area:payload:"

// 文档注释：远端响应体的 Redis 缓存
// 约束：以接口路径为键，只缓存能被 ingest.Decode 接受的响应；维护页、空数组等不可用响应
// 原样交给调用方报错但不写缓存，下次重试仍会访问上游。已缓存但不可用的条目按未命中处理并删除。
// Redis 异常按未命中处理，不影响抓取结果。
type PayloadCache struct {
	next Fetcher
	rc   *redis.Client
	ttl  time.Duration
}

// NewPayloadCache：rc 为空时直接返回 next
func NewPayloadCache(next Fetcher, rc *redis.Client, ttl time.Duration) Fetcher {
	if rc == nil {
		return next
	}
	return &PayloadCache{next: next, rc: rc, ttl: ttl}
}

func (p *PayloadCache) Fetch(ctx context.Context, scope region.Scope) ([]byte, error) {
	path, err := Endpoint(scope)
	if err != nil {
		return nil, err
	}
	key := payloadKeyPrefix + path
	b, err := p.rc.Get(ctx, key).Bytes()
	switch {
	case err == nil && usable(scope, b):
		metrics.PayloadCacheHitsTotal.Inc()
		logger.L().Debug("payload_cache_hit", "path", path)
		return b, nil
	case err == nil:
		logger.L().Warn("payload_cache_drop_invalid", "path", path, "bytes", len(b))
		if err := p.rc.Del(ctx, key).Err(); err != nil {
			logger.L().Error("payload_cache_del_error", "path", path, "err", err)
		}
	case !errors.Is(err, redis.Nil):
		logger.L().Error("payload_cache_get_error", "path", path, "err", err)
	}
	metrics.PayloadCacheMissesTotal.Inc()
	body, err := p.next.Fetch(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !usable(scope, body) {
		logger.L().Debug("payload_cache_skip_invalid", "path", path, "bytes", len(body))
		return body, nil
	}
	if err := p.rc.Set(ctx, key, body, p.ttl).Err(); err != nil {
		logger.L().Error("payload_cache_set_error", "path", path, "err", err)
	}
	return body, nil
}

func usable(scope region.Scope, payload []byte) bool {
	_, err := ingest.Decode(scope.Level, payload)
	return err == nil
}
