// 包 config：集中读取环境变量（可由 .env 提供）并给出默认值
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIBaseURL = "http://guolin.tech/api"

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string
	MaxOpen  int
	MaxIdle  int
}

// DSN：拼装 lib/pq 可用的连接串
func (p Postgres) DSN() string {
	dsn := "postgres://" + p.User
	if p.Password != "" {
		dsn += ":" + p.Password
	}
	return dsn + "@" + p.Host + ":" + p.Port + "/" + p.DB + "?sslmode=" + p.SSLMode
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	APIBaseURL   string
	HTTPTimeout  time.Duration
	FetchRate    float64 // 每秒请求数
	FetchBurst   int
	Store        string // postgres | memory
	Postgres     Postgres
	Redis        Redis
	PayloadTTL   time.Duration
	Addr         string
	APIBase      string
	SyncWorkers  int
	// 入口限流：0 表示关闭
	RateLimitQPS int
}

// Load：加载 .env（不存在时忽略）后读取环境
// 约束：时长与数值格式错误直接返回错误，不静默回退
func Load() (*AppConfig, error) {
	_ = godotenv.Load(".env")
	return FromEnv()
}

// FromEnv：仅读取当前进程环境
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		APIBaseURL: strings.TrimRight(getenvDefault("API_BASE_URL", DefaultAPIBaseURL), "/"),
		Store:      strings.ToLower(getenvDefault("STORE", "postgres")),
		Addr:       getenvDefault("ADDR", ":8080"),
		APIBase:    getenvDefault("API_BASE", "/api"),
	}
	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.PayloadTTL, err = getenvDuration("PAYLOAD_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.FetchRate, err = getenvFloat("FETCH_RATE_PER_SEC", 5); err != nil {
		return nil, err
	}
	if cfg.FetchBurst, err = getenvInt("FETCH_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.SyncWorkers, err = getenvInt("SYNC_WORKERS", 4); err != nil {
		return nil, err
	}
	if os.Getenv("RATE_LIMIT_ENABLED") == "true" {
		if cfg.RateLimitQPS, err = getenvInt("RATE_LIMIT_QPS", 200); err != nil {
			return nil, err
		}
	}
	if cfg.Store != "postgres" && cfg.Store != "memory" {
		return nil, fmt.Errorf("invalid STORE %q: want postgres or memory", cfg.Store)
	}

	cfg.Postgres = Postgres{
		Host:     getenvDefault("PG_HOST", "localhost"),
		Port:     getenvDefault("PG_PORT", "5432"),
		User:     getenvDefault("PG_USER", "postgres"),
		Password: os.Getenv("PG_PASSWORD"),
		DB:       getenvDefault("PG_DB", "area"),
		SSLMode:  getenvDefault("PG_SSLMODE", "disable"),
	}
	if cfg.Postgres.MaxOpen, err = getenvInt("PG_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if cfg.Postgres.MaxIdle, err = getenvInt("PG_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}

	cfg.Redis = Redis{
		Enabled:  os.Getenv("REDIS_ENABLED") == "true",
		Addr:     getenvDefault("REDIS_HOST", "127.0.0.1") + ":" + getenvDefault("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASS"),
	}
	if cfg.Redis.DB, err = getenvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
