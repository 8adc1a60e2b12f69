// 包 terminal：命令行下的列表界面与输入读取
package terminal

import (
	"fmt"
	"io"
	"sync"
)

// Screen：以纯文本输出实现 cascade.Presenter
// 背景：输出只在控制器协程上发生，但锁仍保留，避免与提示符输出交错
type Screen struct {
	mu  sync.Mutex
	out io.Writer
}

func NewScreen(w io.Writer) *Screen { return &Screen{out: w} }

func (s *Screen) ShowLoading(message string) {
	s.printf("%s\n", message)
}

func (s *Screen) HideLoading() {}

func (s *Screen) ShowList(title string, names []string, backVisible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "== %s ==\n", title)
	for i, n := range names {
		fmt.Fprintf(s.out, "%3d. %s\n", i+1, n)
	}
	if backVisible {
		fmt.Fprintln(s.out, "输入序号选择，b 返回，q 退出")
	} else {
		fmt.Fprintln(s.out, "输入序号选择，q 退出")
	}
}

func (s *Screen) Notify(message string) {
	s.printf("[!] %s\n", message)
}

func (s *Screen) Navigate(weatherID string) {
	s.printf("weather_id: %s\n", weatherID)
}

func (s *Screen) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
