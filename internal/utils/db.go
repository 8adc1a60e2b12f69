// 包 utils：数据库与 Redis 连接工具
package utils

import (
	"database/sql"
	"fmt"

	"area-picker/internal/config"
	"area-picker/internal/logger"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenPostgres：通过 lib/pq 打开连接池并按配置设置连接数
func OpenPostgres(cfg config.Postgres) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	logger.L().Debug("pg_open", "host", cfg.Host, "port", cfg.Port, "db", cfg.DB, "max_open", cfg.MaxOpen)
	return db, nil
}

// OpenGorm：在已打开的连接池上构建 gorm 会话
// 约束：连接池生命周期归调用方；gorm 自身日志静默，SQL 细节不进入业务日志
func OpenGorm(db *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	return gdb, nil
}
