package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"area-picker/internal/region"
)

// 上游响应条目：省/市级 id 即编码；县级额外携带 weather_id，其 id 不入库
type payloadItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	WeatherID string `json:"weather_id"`
}

// Decode：把某一级别的响应体解析为待落库记录
// 约束：整批校验，任一条目不合法即整体拒绝；空数组视为失败，避免“抓取成功但仍为空”的反复抓取
func Decode(level region.Level, payload []byte) ([]region.Area, error) {
	if !level.Valid() {
		return nil, region.ErrInvalidLevel
	}
	var items []payloadItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: decode %s payload: %v", region.ErrParse, level, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty %s payload", region.ErrParse, level)
	}
	out := make([]region.Area, 0, len(items))
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: %s item %d has no name", region.ErrParse, level, i)
		}
		a := region.Area{Level: level, Name: name}
		switch level {
		case region.LevelProvince, region.LevelCity:
			if it.ID <= 0 {
				return nil, fmt.Errorf("%w: %s item %d has invalid code %d", region.ErrParse, level, i, it.ID)
			}
			a.Code = it.ID
		case region.LevelCounty:
			wid := strings.TrimSpace(it.WeatherID)
			if wid == "" {
				return nil, fmt.Errorf("%w: county item %d has no weather id", region.ErrParse, i)
			}
			a.WeatherID = wid
		}
		out = append(out, a)
	}
	return out, nil
}
