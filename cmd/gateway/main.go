package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fastgpt-gateway/internal/app/gateway"
	"fastgpt-gateway/pkg/config"
	"fastgpt-gateway/pkg/log"
)

func main() {
	cfg, err := config.LoadGatewayConfig()
	if err != nil {
		stdlog.Fatalf("加载配置失败: %v", err)
	}

	logger, err := log.NewLogger(&log.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		stdlog.Fatalf("初始化日志失败: %v", err)
	}

	application, err := gateway.NewApp(cfg, logger)
	if err != nil {
		stdlog.Fatalf("创建网关应用失败: %v", err)
	}

	addr := ":8080"
	if cfg.API.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	}

	go func() {
		if err := application.Run(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("网关服务异常退出", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := application.Shutdown(ctx); err != nil {
		logger.Error("关闭失败", "error", err)
	}
	logger.Info("网关服务已关闭")
}
