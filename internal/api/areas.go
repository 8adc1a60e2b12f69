// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"area-picker/internal/cascade"
	"area-picker/internal/logger"
	"area-picker/internal/region"
)

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
// 每个请求都走与界面相同的“先查本地，缺则抓取落库”流程
func BuildRoutes(l *cascade.Loader) *http.ServeMux {
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("GET /china", func(w http.ResponseWriter, r *http.Request) {
		ps, err := l.Load(r.Context(), region.ProvincesScope())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toItems(ps))
	})

	apiMux.HandleFunc("GET /china/{province}", func(w http.ResponseWriter, r *http.Request) {
		pc, ok := pathCode(w, r, "province")
		if !ok {
			return
		}
		p, err := l.Province(r.Context(), pc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		cs, err := l.Load(r.Context(), region.CitiesScope(p))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toItems(cs))
	})

	apiMux.HandleFunc("GET /china/{province}/{city}", func(w http.ResponseWriter, r *http.Request) {
		pc, ok := pathCode(w, r, "province")
		if !ok {
			return
		}
		cc, ok := pathCode(w, r, "city")
		if !ok {
			return
		}
		p, err := l.Province(r.Context(), pc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		c, err := l.City(r.Context(), p, cc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ks, err := l.Load(r.Context(), region.CountiesScope(p, c))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toItems(ks))
	})

	apiMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	return apiMux
}

func pathCode(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid " + name + " code"})
		return 0, false
	}
	return n, true
}

// 错误映射：未知编码 404；上游不可达或响应不可用 502；其余 500
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, region.ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, region.ErrNetwork), errors.Is(err, region.ErrParse):
		code, msg = http.StatusBadGateway, cascade.FailureNotice
	}
	logger.L().Warn("api_error", "path", r.URL.Path, "status", code, "err", err)
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
