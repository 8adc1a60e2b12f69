package migrate

import (
	"database/sql"

	"area-picker/internal/logger"
)

// 首次运行时建表；IF NOT EXISTS 保证可重复执行
// 约束：市/县通过外键引用上级，保证不出现孤儿记录；同一上级下编码（县为 weather_id）唯一，
// 并发写入同一批次时不会产生重复行
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _area_provinces (
            id BIGSERIAL PRIMARY KEY,
            province_name TEXT NOT NULL,
            province_code INT NOT NULL,
            created_at BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_area_province_code ON _area_provinces(province_code)`,
		`CREATE TABLE IF NOT EXISTS _area_cities (
            id BIGSERIAL PRIMARY KEY,
            city_name TEXT NOT NULL,
            city_code INT NOT NULL,
            province_id BIGINT NOT NULL REFERENCES _area_provinces(id),
            created_at BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE INDEX IF NOT EXISTS idx_area_cities_province ON _area_cities(province_id, id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_area_city_code ON _area_cities(province_id, city_code)`,
		`CREATE TABLE IF NOT EXISTS _area_counties (
            id BIGSERIAL PRIMARY KEY,
            county_name TEXT NOT NULL,
            weather_id TEXT NOT NULL CHECK (weather_id <> ''),
            city_id BIGINT NOT NULL REFERENCES _area_cities(id),
            created_at BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE INDEX IF NOT EXISTS idx_area_counties_city ON _area_counties(city_id, id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_area_county_weather ON _area_counties(city_id, weather_id)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
