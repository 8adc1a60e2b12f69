// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"area-picker/internal/api"
	"area-picker/internal/cascade"
	"area-picker/internal/config"
	"area-picker/internal/logger"
	"area-picker/internal/metrics"
	"area-picker/internal/middleware"
	"area-picker/internal/utils"
)

func main() {
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	l.Debug("config_api_base", "base", cfg.APIBase, "upstream", cfg.APIBaseURL, "store", cfg.Store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := utils.Bootstrap(ctx, cfg)
	if err != nil {
		l.Error("bootstrap_error", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	loader := cascade.NewLoader(deps.Store, deps.Fetcher)
	mux := http.NewServeMux()
	// 文档注释：镜像路由挂载在 API_BASE 之下，指标单独暴露
	apiMux := api.BuildRoutes(loader)
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.RateLimit(cfg.RateLimitQPS, handler)
	s := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	l.Info("listening", "addr", cfg.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("listen_error", "err", err)
		deps.Close()
		os.Exit(1)
	}
	l.Info("shutdown_done")
}
