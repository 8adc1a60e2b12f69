// 包 cascade：省→市→县三级“先查本地，缺则抓取落库”的级联加载与界面控制
package cascade

import (
	"context"
	"errors"
	"fmt"

	"area-picker/internal/guolin"
	"area-picker/internal/ingest"
	"area-picker/internal/logger"
	"area-picker/internal/metrics"
	"area-picker/internal/region"
	"area-picker/internal/store"

	"golang.org/x/sync/singleflight"
)

// Loader：按级别参数化的统一加载操作，三级共用一套流程
type Loader struct {
	store   store.Store
	fetcher guolin.Fetcher
	group   singleflight.Group
}

func NewLoader(st store.Store, f guolin.Fetcher) *Loader {
	return &Loader{store: st, fetcher: f}
}

// Query：只查本地
func (l *Loader) Query(ctx context.Context, scope region.Scope) ([]region.Area, error) {
	areas, err := l.store.Find(ctx, scope)
	if err != nil {
		logger.L().Error("store_find_error", "scope", scope.String(), "err", err)
		return nil, err
	}
	if len(areas) > 0 {
		metrics.StoreHitsTotal.WithLabelValues(scope.Level.String()).Inc()
		logger.L().Debug("store_hit", "scope", scope.String(), "rows", len(areas))
	} else {
		metrics.StoreMissesTotal.WithLabelValues(scope.Level.String()).Inc()
		logger.L().Debug("store_miss", "scope", scope.String())
	}
	return areas, nil
}

// Fetch：抓取一次并整批落库
// 返回的错误必为 region.ErrNetwork 或 region.ErrParse 之一，调用方 ctx 取消时为 ctx.Err()
// 约束：同一 scope 的并发抓取合并为一次；合并后的抓取不随任一调用方取消，各调用方只在自己的 ctx 上停止等待
func (l *Loader) Fetch(ctx context.Context, scope region.Scope) error {
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(scope.String(), func() (any, error) {
		return nil, l.fetchOnce(shared, scope)
	})
	select {
	case <-ctx.Done():
		logger.L().Debug("fetch_wait_canceled", "scope", scope.String(), "err", ctx.Err())
		return ctx.Err()
	case r := <-ch:
		if r.Shared {
			logger.L().Debug("fetch_shared", "scope", scope.String())
		}
		return r.Err
	}
}

func (l *Loader) fetchOnce(ctx context.Context, scope region.Scope) error {
	payload, err := l.fetcher.Fetch(ctx, scope)
	if err != nil {
		if !errors.Is(err, region.ErrNetwork) {
			err = fmt.Errorf("%w: %w", region.ErrNetwork, err)
		}
		return err
	}
	if _, err := ingest.Handle(ctx, l.store, scope, payload); err != nil {
		if !errors.Is(err, region.ErrParse) {
			err = fmt.Errorf("%w: %w", region.ErrParse, err)
		}
		return err
	}
	return nil
}

// Load：本地命中直接返回；未命中则抓取后重查
// 约束：抓取成功但仍为空按 ErrParse 处理
func (l *Loader) Load(ctx context.Context, scope region.Scope) ([]region.Area, error) {
	areas, err := l.Query(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(areas) > 0 {
		return areas, nil
	}
	if err := l.Fetch(ctx, scope); err != nil {
		return nil, err
	}
	areas, err = l.Query(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(areas) == 0 {
		return nil, fmt.Errorf("%w: %s still empty after fetch", region.ErrParse, scope)
	}
	logger.L().Debug("load_filled", "scope", scope.String(), "rows", len(areas))
	return areas, nil
}

// Province：按编码取省份，必要时先填充省级列表
func (l *Loader) Province(ctx context.Context, code int) (region.Area, error) {
	ps, err := l.Load(ctx, region.ProvincesScope())
	if err != nil {
		return region.Area{}, err
	}
	p, ok := region.FindByCode(ps, code)
	if !ok {
		return region.Area{}, fmt.Errorf("%w: province %d", region.ErrNotFound, code)
	}
	return p, nil
}

// City：按编码取某省下的城市
func (l *Loader) City(ctx context.Context, province region.Area, code int) (region.Area, error) {
	cs, err := l.Load(ctx, region.CitiesScope(province))
	if err != nil {
		return region.Area{}, err
	}
	c, ok := region.FindByCode(cs, code)
	if !ok {
		return region.Area{}, fmt.Errorf("%w: city %d in province %d", region.ErrNotFound, code, province.Code)
	}
	return c, nil
}
