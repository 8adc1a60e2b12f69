package cascade

import (
	"context"

	"area-picker/internal/logger"
	"area-picker/internal/metrics"
	"area-picker/internal/region"
)

// target：一次要展示的级别及其上级
type target struct {
	level    region.Level
	province region.Area
	city     region.Area
}

func (t target) scope() region.Scope {
	switch t.level {
	case region.LevelCity:
		return region.CitiesScope(t.province)
	case region.LevelCounty:
		return region.CountiesScope(t.province, t.city)
	}
	return region.ProvincesScope()
}

func (t target) title() string {
	switch t.level {
	case region.LevelCity:
		return t.province.Name
	case region.LevelCounty:
		return t.city.Name
	}
	return TitleChina
}

type selectEvent struct{ index int }

type backEvent struct{}

// fetchResult：后台抓取结束后投递回界面协程
type fetchResult struct {
	target target
	err    error
}

type stateEvent struct{ reply chan State }

// State：界面协程上的控制器状态快照
type State struct {
	Level    region.Level
	Province region.Area
	City     region.Area
	Rows     []region.Area
	Loading  bool
}

// 文档注释：级联选择控制器
// 约束：状态只在 Run 的协程上读写；Select/Back 可从任意协程调用，经通道投递。
// 抓取在后台协程执行，完成后同样经通道回到 Run，界面调用不会离开 Run 所在协程。
// 选择只在下一级列表真正展示时才生效，抓取失败时级别与已选项保持不变。
type Controller struct {
	loader *Loader
	view   Presenter
	events chan any
	done   chan struct{}

	level    region.Level
	province region.Area
	city     region.Area
	rows     []region.Area
	loading  bool
}

func NewController(loader *Loader, view Presenter) *Controller {
	return &Controller{
		loader: loader,
		view:   view,
		events: make(chan any, 16),
		done:   make(chan struct{}),
	}
}

// Run：界面主循环，从省级列表开始
// 选中县后返回其 weather id；ctx 取消时返回 ctx.Err()，此后到达的抓取结果被丢弃
func (c *Controller) Run(ctx context.Context) (string, error) {
	defer close(c.done)
	c.show(ctx, target{level: region.LevelProvince}, false)
	for {
		select {
		case <-ctx.Done():
			logger.L().Debug("cascade_stop", "err", ctx.Err())
			return "", ctx.Err()
		case ev := <-c.events:
			switch ev := ev.(type) {
			case selectEvent:
				if id := c.onSelect(ctx, ev.index); id != "" {
					return id, nil
				}
			case backEvent:
				c.onBack(ctx)
			case fetchResult:
				c.onFetched(ctx, ev)
			case stateEvent:
				ev.reply <- c.snapshot()
			}
		}
	}
}

// Select：点击当前列表第 index 行（从 0 开始）；省级列表为空时任意 index 触发重新加载
func (c *Controller) Select(index int) { c.post(selectEvent{index: index}) }

// Back：返回上一级
func (c *Controller) Back() { c.post(backEvent{}) }

// State：经主循环取得状态快照；Run 已结束时返回零值与 false
func (c *Controller) State() (State, bool) {
	reply := make(chan State, 1)
	select {
	case c.events <- stateEvent{reply: reply}:
	case <-c.done:
		return State{}, false
	}
	select {
	case s := <-reply:
		return s, true
	case <-c.done:
		return State{}, false
	}
}

func (c *Controller) post(ev any) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) snapshot() State {
	rows := make([]region.Area, len(c.rows))
	copy(rows, c.rows)
	return State{Level: c.level, Province: c.province, City: c.city, Rows: rows, Loading: c.loading}
}

// show：三级共用的“查本地，命中即展示，否则后台抓取”
func (c *Controller) show(ctx context.Context, t target, afterFetch bool) {
	scope := t.scope()
	rows, err := c.loader.Query(ctx, scope)
	if err != nil {
		c.notify()
		return
	}
	if len(rows) == 0 {
		if afterFetch {
			logger.L().Error("cascade_empty_after_fetch", "scope", scope.String())
			c.notify()
			return
		}
		c.startFetch(ctx, t)
		return
	}
	c.rows = rows
	c.level = t.level
	switch t.level {
	case region.LevelCity:
		c.province = t.province
	case region.LevelCounty:
		c.province = t.province
		c.city = t.city
	}
	logger.L().Debug("cascade_show", "scope", scope.String(), "rows", len(rows))
	c.view.ShowList(t.title(), region.Names(rows), t.level != region.LevelProvince)
}

func (c *Controller) startFetch(ctx context.Context, t target) {
	c.loading = true
	c.view.ShowLoading(LoadingMessage)
	logger.L().Debug("cascade_fetch", "scope", t.scope().String())
	go func() {
		err := c.loader.Fetch(ctx, t.scope())
		select {
		case c.events <- fetchResult{target: t, err: err}:
		case <-ctx.Done():
		case <-c.done:
		}
	}()
}

func (c *Controller) onFetched(ctx context.Context, r fetchResult) {
	c.loading = false
	c.view.HideLoading()
	if r.err != nil {
		logger.L().Error("cascade_fetch_error", "scope", r.target.scope().String(), "err", r.err)
		c.notify()
		return
	}
	c.show(ctx, r.target, true)
}

func (c *Controller) onSelect(ctx context.Context, index int) string {
	if c.loading {
		logger.L().Debug("cascade_input_ignored", "reason", "loading", "index", index)
		return ""
	}
	// 省级首次加载失败时列表为空，任意点击重新加载
	if c.level == region.LevelProvince && len(c.rows) == 0 {
		logger.L().Info("cascade_retry_provinces")
		c.show(ctx, target{level: region.LevelProvince}, false)
		return ""
	}
	if index < 0 || index >= len(c.rows) {
		logger.L().Debug("cascade_input_ignored", "reason", "out_of_range", "index", index, "rows", len(c.rows))
		return ""
	}
	picked := c.rows[index]
	switch c.level {
	case region.LevelProvince:
		c.show(ctx, target{level: region.LevelCity, province: picked}, false)
	case region.LevelCity:
		c.show(ctx, target{level: region.LevelCounty, province: c.province, city: picked}, false)
	case region.LevelCounty:
		if picked.WeatherID == "" {
			logger.L().Error("cascade_county_without_weather_id", "county", picked.Name)
			c.notify()
			return ""
		}
		logger.L().Info("cascade_navigate", "county", picked.Name, "weather_id", picked.WeatherID)
		c.view.Navigate(picked.WeatherID)
		return picked.WeatherID
	}
	return ""
}

func (c *Controller) onBack(ctx context.Context) {
	if c.loading {
		logger.L().Debug("cascade_input_ignored", "reason", "loading", "input", "back")
		return
	}
	switch c.level {
	case region.LevelCounty:
		c.show(ctx, target{level: region.LevelCity, province: c.province}, false)
	case region.LevelCity:
		c.show(ctx, target{level: region.LevelProvince}, false)
	}
}

func (c *Controller) notify() {
	metrics.NoticesTotal.Inc()
	c.view.Notify(FailureNotice)
}
