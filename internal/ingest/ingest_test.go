package ingest

import (
	"context"
	"errors"
	"testing"

	"area-picker/internal/region"
	"area-picker/internal/store"
)

func TestDecodeProvinces(t *testing.T) {
	areas, err := Decode(region.LevelProvince, []byte(`[{"id":1,"name":"北京"},{"id":2,"name":"上海"},{"id":3,"name":"天津"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(areas) != 3 {
		t.Fatalf("expected 3 provinces, got %d", len(areas))
	}
	if areas[1].Name != "上海" || areas[1].Code != 2 || areas[1].Level != region.LevelProvince {
		t.Errorf("unexpected province: %+v", areas[1])
	}
}

func TestDecodeCounties(t *testing.T) {
	areas, err := Decode(region.LevelCounty, []byte(`[{"id":937,"name":"苏州","weather_id":"CN101190401"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if areas[0].WeatherID != "CN101190401" || areas[0].Code != 0 {
		t.Errorf("unexpected county: %+v", areas[0])
	}
}

func TestDecodeRejectsWholeBatch(t *testing.T) {
	cases := map[string]struct {
		level   region.Level
		payload string
	}{
		"malformed":          {region.LevelProvince, `<html>oops</html>`},
		"empty":              {region.LevelCity, `[]`},
		"object":             {region.LevelCity, `{"id":1}`},
		"blank name":         {region.LevelCity, `[{"id":1,"name":"苏州"},{"id":2,"name":"  "}]`},
		"zero code":          {region.LevelProvince, `[{"id":0,"name":"北京"}]`},
		"missing weather id": {region.LevelCounty, `[{"id":1,"name":"苏州","weather_id":"CN1"},{"id":2,"name":"吴江"}]`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(c.level, []byte(c.payload)); !errors.Is(err, region.ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestHandlePersistsBatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	n, err := Handle(ctx, st, region.ProvincesScope(), []byte(`[{"id":1,"name":"北京"},{"id":16,"name":"江苏"}]`))
	if err != nil || n != 2 {
		t.Fatalf("handle provinces: n=%d err=%v", n, err)
	}
	ps, _ := st.Find(ctx, region.ProvincesScope())
	js, ok := region.FindByCode(ps, 16)
	if !ok {
		t.Fatal("province 16 not persisted")
	}
	n, err = Handle(ctx, st, region.CitiesScope(js), []byte(`[{"id":116,"name":"苏州"}]`))
	if err != nil || n != 1 {
		t.Fatalf("handle cities: n=%d err=%v", n, err)
	}
	cs, _ := st.Find(ctx, region.CitiesScope(js))
	if len(cs) != 1 || cs[0].ParentID != js.ID || cs[0].Code != 116 {
		t.Errorf("unexpected cities: %+v", cs)
	}
}

func TestHandleUnknownParentIsParseFailure(t *testing.T) {
	st := store.NewMemoryStore()
	scope := region.Scope{Level: region.LevelCity, ParentID: 42, ProvinceCode: 1}
	_, err := Handle(context.Background(), st, scope, []byte(`[{"id":113,"name":"北京"}]`))
	if !errors.Is(err, region.ErrParse) || !errors.Is(err, region.ErrUnknownParent) {
		t.Errorf("expected ErrParse wrapping ErrUnknownParent, got %v", err)
	}
	if st.Len(region.LevelCity) != 0 {
		t.Error("nothing should be persisted")
	}
}
