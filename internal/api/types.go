package api

import "area-picker/internal/region"

// 文档注释：地区列表条目（对外）
// 背景：与上游 /china 接口同构，客户端可直接把本服务当作上游镜像使用。
// 约束：省/市级 id 为行政编码；县级 id 为本地记录号，并携带 weather_id。
type areaItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	WeatherID string `json:"weather_id,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func toItems(areas []region.Area) []areaItem {
	out := make([]areaItem, 0, len(areas))
	for _, a := range areas {
		it := areaItem{Name: a.Name, WeatherID: a.WeatherID}
		if a.Level == region.LevelCounty {
			it.ID = a.ID
		} else {
			it.ID = int64(a.Code)
		}
		out = append(out, it)
	}
	return out
}
