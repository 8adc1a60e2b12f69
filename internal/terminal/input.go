package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"area-picker/internal/logger"
)

// ErrQuit：用户输入 q 主动退出
var ErrQuit = errors.New("quit")

// Target：接收点击与返回的一方，通常是 *cascade.Controller
type Target interface {
	Select(index int)
	Back()
}

// ReadCommands：逐行读取输入并转交 target
// 约束：序号从 1 开始；b/back 返回上一级；q/quit 返回 ErrQuit；输入结束返回 io.EOF
// 无法识别的行只记录日志；ctx 取消后在下一行到达时返回
func ReadCommands(ctx context.Context, r io.Reader, target Target) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		switch line {
		case "":
			continue
		case "b", "back":
			target.Back()
			continue
		case "q", "quit", "exit":
			return ErrQuit
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 {
			logger.L().Debug("terminal_bad_input", "line", line)
			continue
		}
		target.Select(n - 1)
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}
