// 包 ingest：解析上游响应并整批写入本地存储
package ingest

import (
	"context"
	"fmt"

	"area-picker/internal/logger"
	"area-picker/internal/metrics"
	"area-picker/internal/region"
	"area-picker/internal/store"
)

// Handle：解析 + 落库，两步要么全部成功要么都不生效
// 返回写入条数；scope 下已有记录时为 0。解析与存储错误统一包装为 region.ErrParse。
func Handle(ctx context.Context, st store.Store, scope region.Scope, payload []byte) (int, error) {
	level := scope.Level.String()
	areas, err := Decode(scope.Level, payload)
	if err != nil {
		metrics.IngestFailTotal.WithLabelValues(level).Inc()
		logger.L().Error("ingest_decode_error", "scope", scope.String(), "bytes", len(payload), "err", err)
		return 0, err
	}
	n, err := st.SaveBatch(ctx, scope, areas)
	if err != nil {
		metrics.IngestFailTotal.WithLabelValues(level).Inc()
		logger.L().Error("ingest_save_error", "scope", scope.String(), "err", err)
		return 0, fmt.Errorf("%w: save %s: %w", region.ErrParse, scope, err)
	}
	metrics.IngestRowsTotal.WithLabelValues(level).Add(float64(n))
	logger.L().Info("ingest_done", "scope", scope.String(), "decoded", len(areas), "inserted", n)
	return n, nil
}
