package cascade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"area-picker/internal/guolin"
	"area-picker/internal/region"
	"area-picker/internal/store"
)

// fakePresenter：把每次界面调用记录成一行文本，按顺序投递到通道
type fakePresenter struct {
	calls chan string
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{calls: make(chan string, 64)}
}

func (p *fakePresenter) ShowLoading(message string) { p.calls <- "loading" }
func (p *fakePresenter) HideLoading()               { p.calls <- "hide" }
func (p *fakePresenter) Notify(message string)      { p.calls <- "notice:" + message }
func (p *fakePresenter) Navigate(weatherID string)  { p.calls <- "nav:" + weatherID }
func (p *fakePresenter) ShowList(title string, names []string, backVisible bool) {
	p.calls <- fmt.Sprintf("list:%s:%s:back=%v", title, strings.Join(names, ","), backVisible)
}

func (p *fakePresenter) expect(t *testing.T, want ...string) {
	t.Helper()
	for _, w := range want {
		select {
		case got := <-p.calls:
			if got != w {
				t.Fatalf("presenter call = %q, want %q", got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for presenter call %q", w)
		}
	}
}

func (p *fakePresenter) expectQuiet(t *testing.T) {
	t.Helper()
	select {
	case got := <-p.calls:
		t.Fatalf("unexpected presenter call %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

// fakeFetcher：按接口路径返回预置响应并计数
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	errs     map[string]error
	gate     chan struct{}
	counts   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		payloads: make(map[string]string),
		errs:     make(map[string]error),
		counts:   make(map[string]int),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, scope region.Scope) ([]byte, error) {
	path, err := guolin.Endpoint(scope)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.counts[path]++
	gate := f.gate
	body, ok := f.payloads[path]
	ferr := f.errs[path]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if ferr != nil {
		return nil, ferr
	}
	if !ok {
		return nil, fmt.Errorf("%w: no payload for %s", region.ErrNetwork, path)
	}
	return []byte(body), nil
}

// succeed：把 path 改为返回 body，清除预置错误
func (f *fakeFetcher) succeed(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, path)
	f.payloads[path] = body
}

func (f *fakeFetcher) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[path]
}

func (f *fakeFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.counts {
		n += c
	}
	return n
}

const (
	provincesPayload = `[{"id":1,"name":"北京"},{"id":2,"name":"上海"},{"id":16,"name":"江苏"}]`
	jiangsuPayload   = `[{"id":113,"name":"南京"},{"id":116,"name":"苏州"}]`
	suzhouPayload    = `[{"id":937,"name":"苏州","weather_id":"CN101190401"},{"id":938,"name":"常熟","weather_id":"CN101190402"}]`
)

func fullFetcher() *fakeFetcher {
	f := newFakeFetcher()
	f.payloads["/china"] = provincesPayload
	f.payloads["/china/16"] = jiangsuPayload
	f.payloads["/china/16/116"] = suzhouPayload
	return f
}

type runResult struct {
	id  string
	err error
}

func startController(t *testing.T, st store.Store, f guolin.Fetcher) (*Controller, *fakePresenter, context.CancelFunc, <-chan runResult) {
	t.Helper()
	p := newFakePresenter()
	c := NewController(NewLoader(st, f), p)
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan runResult, 1)
	go func() {
		id, err := c.Run(ctx)
		out <- runResult{id: id, err: err}
	}()
	t.Cleanup(cancel)
	return c, p, cancel, out
}

func mustState(t *testing.T, c *Controller) State {
	t.Helper()
	s, ok := c.State()
	if !ok {
		t.Fatal("controller is not running")
	}
	return s
}

func TestEmptyStoreFetchesProvincesOnce(t *testing.T) {
	st := store.NewMemoryStore()
	f := fullFetcher()
	_, p, _, _ := startController(t, st, f)

	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")

	if got := f.count("/china"); got != 1 {
		t.Errorf("expected one province fetch, got %d", got)
	}
	if got := st.Len(region.LevelProvince); got != 3 {
		t.Errorf("expected 3 provinces persisted, got %d", got)
	}
}

func TestCachedLevelsDoNotFetch(t *testing.T) {
	st := store.NewMemoryStore()
	warm := NewLoader(st, fullFetcher())
	if _, err := warm.Warm(context.Background(), 2); err != nil {
		t.Fatalf("warm: %v", err)
	}

	f := newFakeFetcher()
	c, p, _, _ := startController(t, st, f)
	p.expect(t, "list:中国:北京,上海,江苏:back=false")
	c.Select(2)
	p.expect(t, "list:江苏:南京,苏州:back=true")
	c.Select(1)
	p.expect(t, "list:苏州:苏州,常熟:back=true")

	if f.total() != 0 {
		t.Errorf("expected no remote fetch for cached levels, got %d", f.total())
	}
}

func TestCitiesFetchedOnceForProvince(t *testing.T) {
	st := store.NewMemoryStore()
	f := fullFetcher()
	c, p, _, _ := startController(t, st, f)
	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")

	c.Select(2)
	p.expect(t, "loading", "hide", "list:江苏:南京,苏州:back=true")
	if got := f.count("/china/16"); got != 1 {
		t.Fatalf("expected one fetch to /china/16, got %d", got)
	}

	c.Back()
	p.expect(t, "list:中国:北京,上海,江苏:back=false")
	c.Select(2)
	p.expect(t, "list:江苏:南京,苏州:back=true")
	if got := f.count("/china/16"); got != 1 {
		t.Errorf("cities should come from the store the second time, fetches=%d", got)
	}
}

func TestCountySelectionNavigatesWithWeatherID(t *testing.T) {
	st := store.NewMemoryStore()
	c, p, _, out := startController(t, st, fullFetcher())
	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")
	c.Select(2)
	p.expect(t, "loading", "hide", "list:江苏:南京,苏州:back=true")
	c.Select(1)
	p.expect(t, "loading", "hide", "list:苏州:苏州,常熟:back=true")
	c.Select(1)
	p.expect(t, "nav:CN101190402")

	select {
	case r := <-out:
		if r.err != nil || r.id != "CN101190402" {
			t.Errorf("Run returned (%q, %v), want CN101190402", r.id, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after navigation")
	}
	if _, ok := c.State(); ok {
		t.Error("controller should have terminated after navigation")
	}
}

func TestBackNavigation(t *testing.T) {
	st := store.NewMemoryStore()
	c, p, _, _ := startController(t, st, fullFetcher())
	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")
	c.Select(2)
	p.expect(t, "loading", "hide", "list:江苏:南京,苏州:back=true")
	c.Select(1)
	p.expect(t, "loading", "hide", "list:苏州:苏州,常熟:back=true")

	// 县 → 已选省份的市列表
	c.Back()
	p.expect(t, "list:江苏:南京,苏州:back=true")
	if s := mustState(t, c); s.Level != region.LevelCity || s.Province.Code != 16 {
		t.Errorf("unexpected state after back from county: %+v", s)
	}
	// 市 → 省
	c.Back()
	p.expect(t, "list:中国:北京,上海,江苏:back=false")
	// 省级无返回
	c.Back()
	p.expectQuiet(t)
	if s := mustState(t, c); s.Level != region.LevelProvince {
		t.Errorf("expected province level, got %v", s.Level)
	}
}

func TestNetworkFailureLeavesStoreAndStateUnchanged(t *testing.T) {
	st := store.NewMemoryStore()
	f := newFakeFetcher()
	f.errs["/china"] = fmt.Errorf("%w: no route to host", region.ErrNetwork)
	c, p, _, _ := startController(t, st, f)

	p.expect(t, "loading", "hide", "notice:"+FailureNotice)
	if st.Len(region.LevelProvince) != 0 {
		t.Error("store must stay empty after a network failure")
	}
	s := mustState(t, c)
	if s.Level != region.LevelProvince || s.Loading || len(s.Rows) != 0 || s.Province.ID != 0 {
		t.Errorf("state changed after failure: %+v", s)
	}
	if f.count("/china") != 1 {
		t.Errorf("failure must not be retried, fetches=%d", f.count("/china"))
	}
}

func TestCityFetchFailureKeepsProvinceLevel(t *testing.T) {
	st := store.NewMemoryStore()
	f := fullFetcher()
	f.errs["/china/1"] = fmt.Errorf("%w: timeout", region.ErrNetwork)
	c, p, _, _ := startController(t, st, f)
	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")

	c.Select(0)
	p.expect(t, "loading", "hide", "notice:"+FailureNotice)
	s := mustState(t, c)
	if s.Level != region.LevelProvince || s.Province.ID != 0 {
		t.Errorf("selection or level changed after failed city fetch: %+v", s)
	}

	// 仍在省级，可以改选其它省份
	c.Select(2)
	p.expect(t, "loading", "hide", "list:江苏:南京,苏州:back=true")
}

func TestParseFailureShowsNotice(t *testing.T) {
	st := store.NewMemoryStore()
	f := newFakeFetcher()
	f.payloads["/china"] = `<html>502 Bad Gateway</html>`
	c, p, _, _ := startController(t, st, f)

	p.expect(t, "loading", "hide", "notice:"+FailureNotice)
	if st.Len(region.LevelProvince) != 0 {
		t.Error("malformed payload must not persist anything")
	}
	if s := mustState(t, c); s.Loading {
		t.Error("loading indicator must be dismissed")
	}
}

func TestInputIgnoredWhileLoading(t *testing.T) {
	st := store.NewMemoryStore()
	f := fullFetcher()
	f.gate = make(chan struct{})
	c, p, _, _ := startController(t, st, f)
	p.expect(t, "loading")

	c.Select(0)
	c.Back()
	if s := mustState(t, c); !s.Loading {
		t.Fatal("expected loading state")
	}
	close(f.gate)
	p.expect(t, "hide", "list:中国:北京,上海,江苏:back=false")
	p.expectQuiet(t)
	if f.count("/china/1") != 0 {
		t.Error("selection during loading must be dropped")
	}
}

func TestOutOfRangeSelectionIgnored(t *testing.T) {
	st := store.NewMemoryStore()
	c, p, _, _ := startController(t, st, fullFetcher())
	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")
	c.Select(3)
	c.Select(-1)
	p.expectQuiet(t)
}

func TestCancelStopsRun(t *testing.T) {
	st := store.NewMemoryStore()
	f := fullFetcher()
	f.gate = make(chan struct{})
	defer close(f.gate)
	_, p, cancel, out := startController(t, st, f)
	p.expect(t, "loading")
	cancel()
	select {
	case r := <-out:
		if !errors.Is(r.err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
	p.expectQuiet(t)
}

func TestSelectRetriesProvincesAfterFailure(t *testing.T) {
	st := store.NewMemoryStore()
	f := newFakeFetcher()
	f.errs["/china"] = fmt.Errorf("%w: offline", region.ErrNetwork)
	c, p, _, _ := startController(t, st, f)
	p.expect(t, "loading", "hide", "notice:"+FailureNotice)

	f.succeed("/china", provincesPayload)
	c.Select(0)
	p.expect(t, "loading", "hide", "list:中国:北京,上海,江苏:back=false")
	if got := f.count("/china"); got != 2 {
		t.Errorf("expected a second province fetch, got %d", got)
	}
	if s := mustState(t, c); s.Level != region.LevelProvince || len(s.Rows) != 3 || s.Province.ID != 0 {
		t.Errorf("retry must only fill the province list: %+v", s)
	}
}
