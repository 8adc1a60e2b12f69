package utils

import (
	"context"
	"database/sql"
	"net/http"

	"area-picker/internal/config"
	"area-picker/internal/guolin"
	"area-picker/internal/logger"
	"area-picker/internal/migrate"
	"area-picker/internal/store"

	"github.com/redis/go-redis/v9"
)

// Deps：各入口共用的已初始化依赖
type Deps struct {
	Store   store.Store
	Fetcher guolin.Fetcher
	DB      *sql.DB
	Redis   *redis.Client
}

// Close：释放连接；可重复调用
func (d *Deps) Close() {
	if d.Redis != nil {
		_ = d.Redis.Close()
		d.Redis = nil
	}
	if d.DB != nil {
		_ = d.DB.Close()
		d.DB = nil
	}
}

// 文档注释：按配置初始化存储与抓取链路
// 背景：STORE=postgres 时依次打开连接池、建表、挂载 gorm；STORE=memory 仅用于试用与测试，进程退出即丢失。
// 约束：数据库与建表失败直接返回错误；Redis ping 失败只记录日志并不再使用，抓取链路退化为直连上游。
func Bootstrap(ctx context.Context, cfg *config.AppConfig) (*Deps, error) {
	l := logger.L()
	d := &Deps{}
	switch cfg.Store {
	case "memory":
		d.Store = store.NewMemoryStore()
		l.Info("store_memory")
	default:
		db, err := OpenPostgres(cfg.Postgres)
		if err != nil {
			return nil, err
		}
		d.DB = db
		if err := db.PingContext(ctx); err != nil {
			d.Close()
			return nil, err
		}
		l.Info("db_ping_ok")
		if err := migrate.EnsureSchema(db); err != nil {
			d.Close()
			return nil, err
		}
		gdb, err := OpenGorm(db)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Store = store.AttachDB(gdb)
	}

	d.Redis = OpenRedis(cfg.Redis)
	if d.Redis == nil {
		l.Info("redis_disabled")
	} else if err := d.Redis.Ping(ctx).Err(); err != nil {
		l.Error("redis_ping_error", "err", err, "fallback", "no_payload_cache")
		_ = d.Redis.Close()
		d.Redis = nil
	} else {
		l.Info("redis_ping_ok")
	}

	client := guolin.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, cfg.FetchRate, cfg.FetchBurst)
	d.Fetcher = guolin.NewPayloadCache(client, d.Redis, cfg.PayloadTTL)
	l.Debug("fetcher_ready", "base", cfg.APIBaseURL, "timeout", cfg.HTTPTimeout, "rate", cfg.FetchRate)
	return d, nil
}
