// 包 store：本地行政区存储，只提供按上级查询与整批“缺则写入”，不提供更新与删除
package store

import (
	"context"
	"errors"
	"fmt"

	"area-picker/internal/logger"
	"area-picker/internal/region"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store：本地存储契约
// Find 按插入顺序返回 scope 下的全部记录，无记录时返回空切片与 nil 错误。
// SaveBatch 在单个事务内写入整批记录：scope 下已有记录时不写入并返回 0；上级不存在返回 ErrUnknownParent。
type Store interface {
	Find(ctx context.Context, scope region.Scope) ([]region.Area, error)
	SaveBatch(ctx context.Context, scope region.Scope, areas []region.Area) (int, error)
}

// GormStore：基于 gorm 的 PostgreSQL 实现，表结构见 migrate.EnsureSchema
type GormStore struct {
	db *gorm.DB
}

func AttachDB(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Find(ctx context.Context, scope region.Scope) ([]region.Area, error) {
	q := s.db.WithContext(ctx).Order("id ASC")
	var out []region.Area
	switch scope.Level {
	case region.LevelProvince:
		var rows []Province
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		out = make([]region.Area, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.area())
		}
	case region.LevelCity:
		var rows []City
		if err := q.Where("province_id = ?", scope.ParentID).Find(&rows).Error; err != nil {
			return nil, err
		}
		out = make([]region.Area, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.area())
		}
	case region.LevelCounty:
		var rows []County
		if err := q.Where("city_id = ?", scope.ParentID).Find(&rows).Error; err != nil {
			return nil, err
		}
		out = make([]region.Area, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.area())
		}
	default:
		return nil, region.ErrInvalidLevel
	}
	logger.L().Debug("db_find", "scope", scope.String(), "rows", len(out))
	return out, nil
}

// SaveBatch：整批“缺则写入”
// 约束：市/县先以 SELECT ... FOR UPDATE 锁住上级行，同一上级的并发批次串行执行，后到者看到已有记录后不写入；
// 省级没有上级行可锁，依赖 province_code 唯一索引与 ON CONFLICT DO NOTHING，并发写入不报错也不重复。
func (s *GormStore) SaveBatch(ctx context.Context, scope region.Scope, areas []region.Area) (int, error) {
	if err := checkBatch(scope, areas); err != nil {
		return 0, err
	}
	if len(areas) == 0 {
		return 0, nil
	}
	inserted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res *gorm.DB
		switch scope.Level {
		case region.LevelProvince:
			if n, err := count(tx, &Province{}, "", 0); err != nil || n > 0 {
				return err
			}
			rows := make([]Province, 0, len(areas))
			for _, a := range areas {
				rows = append(rows, Province{ProvinceName: a.Name, ProvinceCode: a.Code})
			}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		case region.LevelCity:
			if err := lockParent(tx, &Province{}, scope.ParentID); err != nil {
				return err
			}
			if n, err := count(tx, &City{}, "province_id = ?", scope.ParentID); err != nil || n > 0 {
				return err
			}
			rows := make([]City, 0, len(areas))
			for _, a := range areas {
				rows = append(rows, City{CityName: a.Name, CityCode: a.Code, ProvinceID: scope.ParentID})
			}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		case region.LevelCounty:
			if err := lockParent(tx, &City{}, scope.ParentID); err != nil {
				return err
			}
			if n, err := count(tx, &County{}, "city_id = ?", scope.ParentID); err != nil || n > 0 {
				return err
			}
			rows := make([]County, 0, len(areas))
			for _, a := range areas {
				rows = append(rows, County{CountyName: a.Name, WeatherID: a.WeatherID, CityID: scope.ParentID})
			}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
		}
		if res.Error != nil {
			return res.Error
		}
		inserted = int(res.RowsAffected)
		return nil
	})
	if err != nil {
		logger.L().Error("db_save_error", "scope", scope.String(), "err", err)
		return 0, err
	}
	logger.L().Debug("db_save", "scope", scope.String(), "inserted", inserted)
	return inserted, nil
}

// lockParent：锁住上级行直到事务结束；上级不存在返回 ErrUnknownParent
func lockParent(tx *gorm.DB, model any, id int64) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", id).Take(model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return region.ErrUnknownParent
	}
	return err
}

func count(tx *gorm.DB, model any, where string, arg int64) (int64, error) {
	var n int64
	q := tx.Model(model)
	if where != "" {
		q = q.Where(where, arg)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// checkBatch：两种实现共用的批次校验
func checkBatch(scope region.Scope, areas []region.Area) error {
	if !scope.Level.Valid() {
		return region.ErrInvalidLevel
	}
	if scope.Level != region.LevelProvince && scope.ParentID <= 0 {
		return region.ErrUnknownParent
	}
	for i, a := range areas {
		if a.Level != scope.Level {
			return fmt.Errorf("%w: row %d is %s, batch is %s", region.ErrInvalidLevel, i, a.Level, scope.Level)
		}
		if a.Level == region.LevelCounty && a.WeatherID == "" {
			return errors.New("county without weather id")
		}
	}
	return nil
}

var _ Store = (*GormStore)(nil)
