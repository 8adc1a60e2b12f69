// 包 region：省/市/县三级行政区的领域模型，供存储、抓取、解析与级联控制共用
package region

import (
	"errors"
	"strconv"
)

// Level 为三级层次的封闭枚举；不使用字符串标签分派
type Level int

const (
	LevelProvince Level = iota
	LevelCity
	LevelCounty
)

func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelCity:
		return "city"
	case LevelCounty:
		return "county"
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

func (l Level) Valid() bool { return l >= LevelProvince && l <= LevelCounty }

// Parent：上一级；省级无上级，返回 false
func (l Level) Parent() (Level, bool) {
	switch l {
	case LevelCity:
		return LevelProvince, true
	case LevelCounty:
		return LevelCity, true
	}
	return l, false
}

// 文档注释：已落库的一条行政区记录（任一级别）
// 约束：ID 为本地自增主键；ParentID 省级为 0；Code 为省/市编码，县级为 0；WeatherID 仅县级非空。
// 记录落库后不可变，只在抓取成功时写入一次。
type Area struct {
	ID        int64
	Level     Level
	ParentID  int64
	Name      string
	Code      int
	WeatherID string
}

// 文档注释：一次“级别 + 上级”的查询范围
// 约束：ParentID 为上级本地 ID，用于本地查询；ProvinceCode/CityCode 用于拼装远端地址。
type Scope struct {
	Level        Level
	ParentID     int64
	ProvinceCode int
	CityCode     int
}

func ProvincesScope() Scope { return Scope{Level: LevelProvince} }

func CitiesScope(province Area) Scope {
	return Scope{Level: LevelCity, ParentID: province.ID, ProvinceCode: province.Code}
}

func CountiesScope(province, city Area) Scope {
	return Scope{Level: LevelCounty, ParentID: city.ID, ProvinceCode: province.Code, CityCode: city.Code}
}

func (s Scope) String() string {
	return s.Level.String() + ":" + strconv.FormatInt(s.ParentID, 10)
}

// Names：按原顺序取名称列表，用于列表展示
func Names(areas []Area) []string {
	out := make([]string, 0, len(areas))
	for _, a := range areas {
		out = append(out, a.Name)
	}
	return out
}

// FindByCode：按编码查找（省/市级）
func FindByCode(areas []Area, code int) (Area, bool) {
	for _, a := range areas {
		if a.Code == code {
			return a, true
		}
	}
	return Area{}, false
}

var (
	// ErrNetwork：传输层失败（无网络、非 2xx 响应）
	ErrNetwork = errors.New("network failure")
	// ErrParse：响应体无法解析或落库失败
	ErrParse         = errors.New("parse or persist failure")
	ErrUnknownParent = errors.New("unknown parent area")
	ErrInvalidLevel  = errors.New("invalid level")
	ErrNotFound      = errors.New("area not found")
)
