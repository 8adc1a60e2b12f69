// 全量预取：把省市县三级一次性抓取落库，已存在的级别直接跳过，可重复执行补齐失败部分
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"area-picker/internal/cascade"
	"area-picker/internal/config"
	"area-picker/internal/logger"
	"area-picker/internal/utils"
)

func main() {
	l := logger.Setup()
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Info("area_sync_start", "workers", cfg.SyncWorkers, "upstream", cfg.APIBaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := utils.Bootstrap(ctx, cfg)
	if err != nil {
		l.Error("bootstrap_error", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	begin := time.Now()
	stats, err := cascade.NewLoader(deps.Store, deps.Fetcher).Warm(ctx, cfg.SyncWorkers)
	l.Info("area_sync_done",
		"provinces", stats.Provinces,
		"cities", stats.Cities,
		"counties", stats.Counties,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(begin).Milliseconds(),
	)
	if err != nil {
		l.Error("area_sync_error", "err", err)
		deps.Close()
		os.Exit(1)
	}
	if stats.Failed > 0 {
		deps.Close()
		os.Exit(2)
	}
}
