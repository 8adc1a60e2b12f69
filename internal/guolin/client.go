// 包 guolin：省市县区划 REST 接口客户端，每级一次 GET，返回原始响应体
package guolin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"area-picker/internal/logger"
	"area-picker/internal/metrics"
	"area-picker/internal/region"

	"golang.org/x/time/rate"
)

const maxPayloadBytes = 4 << 20

// Fetcher：远端抓取契约，成功返回原始响应体；失败一律包装为 region.ErrNetwork
type Fetcher interface {
	Fetch(ctx context.Context, scope region.Scope) ([]byte, error)
}

// Endpoint：按级别拼装路径
// /china、/china/{provinceCode}、/china/{provinceCode}/{cityCode}
func Endpoint(scope region.Scope) (string, error) {
	switch scope.Level {
	case region.LevelProvince:
		return "/china", nil
	case region.LevelCity:
		return "/china/" + strconv.Itoa(scope.ProvinceCode), nil
	case region.LevelCounty:
		return "/china/" + strconv.Itoa(scope.ProvinceCode) + "/" + strconv.Itoa(scope.CityCode), nil
	}
	return "", region.ErrInvalidLevel
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient：hc 为空时使用 10s 超时的默认客户端；rps<=0 时不限速
func NewClient(baseURL string, hc *http.Client, rps float64, burst int) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Client{baseURL: baseURL, http: hc, limiter: lim}
}

func (c *Client) Fetch(ctx context.Context, scope region.Scope) ([]byte, error) {
	path, err := Endpoint(scope)
	if err != nil {
		return nil, err
	}
	level := scope.Level.String()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", region.ErrNetwork, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", region.ErrNetwork, err)
	}
	t0 := time.Now()
	metrics.FetchRequestsTotal.WithLabelValues(level).Inc()
	logger.L().Debug("fetch_begin", "path", path, "level", level)
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.FetchFailTotal.WithLabelValues(level, "transport").Inc()
		logger.L().Error("fetch_http_error", "path", path, "err", err)
		return nil, fmt.Errorf("%w: %v", region.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.FetchFailTotal.WithLabelValues(level, "status").Inc()
		logger.L().Error("fetch_bad_status", "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s returned %d", region.ErrNetwork, path, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		metrics.FetchFailTotal.WithLabelValues(level, "read").Inc()
		logger.L().Error("fetch_read_error", "path", path, "err", err)
		return nil, fmt.Errorf("%w: %v", region.ErrNetwork, err)
	}
	dur := time.Since(t0).Milliseconds()
	metrics.FetchDurationMs.WithLabelValues(level).Observe(float64(dur))
	logger.L().Debug("fetch_done", "path", path, "bytes", len(body), "duration_ms", dur)
	return body, nil
}

var _ Fetcher = (*Client)(nil)
