// 交互式地区选择：省→市→县逐级选择，选中县后输出其 weather id
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"area-picker/internal/cascade"
	"area-picker/internal/config"
	"area-picker/internal/logger"
	"area-picker/internal/terminal"
	"area-picker/internal/utils"
)

func main() {
	// 日志写 stderr，标准输出只留给列表与结果
	l := logger.Setup()
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := utils.Bootstrap(ctx, cfg)
	if err != nil {
		l.Error("bootstrap_error", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctrl := cascade.NewController(cascade.NewLoader(deps.Store, deps.Fetcher), terminal.NewScreen(os.Stdout))
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := terminal.ReadCommands(ctx, os.Stdin, ctrl)
		if errors.Is(err, terminal.ErrQuit) || errors.Is(err, io.EOF) {
			l.Debug("input_closed", "err", err)
		} else if err != nil {
			l.Error("input_error", "err", err)
		}
		cancel()
	}()

	// 选中县后由 Screen.Navigate 输出 weather id
	id, err := ctrl.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			l.Info("choose_area_aborted")
			return
		}
		l.Error("choose_area_error", "err", err)
		deps.Close()
		os.Exit(1)
	}
	l.Info("choose_area_done", "weather_id", id)
}
