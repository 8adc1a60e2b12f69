package middleware

import (
	"net/http"

	"area-picker/internal/logger"
	"area-picker/internal/metrics"

	"golang.org/x/time/rate"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：镜像接口在未命中时会触发上游抓取，入口限速可避免突发流量把压力转嫁给上游与数据库。
// 约束：不做排队，超出即返回 429；qps<=0 时原样返回 next。
func RateLimit(qps int, next http.Handler) http.Handler {
	if qps <= 0 {
		return next
	}
	lim := rate.NewLimiter(rate.Limit(qps), qps)
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, "429").Inc()
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
