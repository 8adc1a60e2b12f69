package cascade

import (
	"context"
	"sync/atomic"

	"area-picker/internal/logger"
	"area-picker/internal/region"

	"golang.org/x/sync/errgroup"
)

type WarmStats struct {
	Provinces int
	Cities    int64
	Counties  int64
	Failed    int64
}

// Warm：预取整棵省市县树到本地存储
// 约束：省级失败直接返回；单个市/县失败只计数并继续，可重复执行补齐
func (l *Loader) Warm(ctx context.Context, workers int) (WarmStats, error) {
	var st WarmStats
	ps, err := l.Load(ctx, region.ProvincesScope())
	if err != nil {
		return st, err
	}
	st.Provinces = len(ps)
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range ps {
		p := p
		g.Go(func() error {
			cs, err := l.Load(gctx, region.CitiesScope(p))
			if err != nil {
				atomic.AddInt64(&st.Failed, 1)
				logger.L().Error("warm_cities_error", "province", p.Name, "err", err)
				return gctx.Err()
			}
			atomic.AddInt64(&st.Cities, int64(len(cs)))
			for _, c := range cs {
				ks, err := l.Load(gctx, region.CountiesScope(p, c))
				if err != nil {
					atomic.AddInt64(&st.Failed, 1)
					logger.L().Error("warm_counties_error", "province", p.Name, "city", c.Name, "err", err)
					if gctx.Err() != nil {
						return gctx.Err()
					}
					continue
				}
				atomic.AddInt64(&st.Counties, int64(len(ks)))
			}
			logger.L().Info("warm_province_done", "province", p.Name, "cities", len(cs))
			return nil
		})
	}
	err = g.Wait()
	return st, err
}
