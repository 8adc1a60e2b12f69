package store

import "area-picker/internal/region"

// 三张表与 migrate.EnsureSchema 的建表语句一一对应

type Province struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	ProvinceName string `gorm:"not null"`
	ProvinceCode int    `gorm:"not null"`
	CreatedAt    int64  `gorm:"autoCreateTime"`
}

func (Province) TableName() string { return "_area_provinces" }

type City struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CityName   string `gorm:"not null"`
	CityCode   int    `gorm:"not null"`
	ProvinceID int64  `gorm:"index;not null"`
	CreatedAt  int64  `gorm:"autoCreateTime"`

	Province *Province `gorm:"foreignKey:ProvinceID"`
}

func (City) TableName() string { return "_area_cities" }

type County struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CountyName string `gorm:"not null"`
	WeatherID  string `gorm:"not null"`
	CityID     int64  `gorm:"index;not null"`
	CreatedAt  int64  `gorm:"autoCreateTime"`

	City *City `gorm:"foreignKey:CityID"`
}

func (County) TableName() string { return "_area_counties" }

func (p Province) area() region.Area {
	return region.Area{ID: p.ID, Level: region.LevelProvince, Name: p.ProvinceName, Code: p.ProvinceCode}
}

func (c City) area() region.Area {
	return region.Area{ID: c.ID, Level: region.LevelCity, ParentID: c.ProvinceID, Name: c.CityName, Code: c.CityCode}
}

func (c County) area() region.Area {
	return region.Area{ID: c.ID, Level: region.LevelCounty, ParentID: c.CityID, Name: c.CountyName, WeatherID: c.WeatherID}
}
