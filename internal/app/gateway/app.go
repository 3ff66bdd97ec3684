// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gateway 网关应用装配：上游客户端、活跃流注册表、HTTP 层与可观测性
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	apihttp "fastgpt-gateway/internal/api/http"
	"fastgpt-gateway/internal/api/http/middleware"
	"fastgpt-gateway/internal/storage/streamstate"
	"fastgpt-gateway/internal/upstream/fastgpt"
	"fastgpt-gateway/pkg/config"
	"fastgpt-gateway/pkg/log"
	"fastgpt-gateway/pkg/secrets"
	"fastgpt-gateway/pkg/tracing"
)

// secretRefPrefix api_key 的 secret 引用前缀，如 secret:fastgpt_api_key
const secretRefPrefix = "secret:"

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App 网关应用
type App struct {
	config       *config.Config
	logger       *log.Logger
	router       *apihttp.Router
	hertz        *server.Hertz
	streams      streamstate.Store
	otelProvider otelProviderShutdown
}

// NewApp 创建网关应用（由 cmd/gateway 调用）
func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	streams, err := streamstate.NewStore(cfg.StreamState)
	if err != nil {
		return nil, fmt.Errorf("初始化活跃流注册表失败: %w", err)
	}

	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		streams.Close()
		return nil, err
	}

	limiter := fastgpt.NewStreamLimiter(
		cfg.Upstream.Limits.StreamsPerSecond,
		cfg.Upstream.Limits.Burst,
		cfg.Upstream.Limits.MaxConcurrent,
	)
	upstream := fastgpt.NewClient(
		cfg.Upstream.BaseURL,
		apiKey,
		parseDuration(cfg.Upstream.Timeout, 30*time.Second),
		limiter,
	)

	handler := apihttp.NewHandler(logger, upstream, streams)
	mw := middleware.NewMiddleware(logger)

	rps := 0.0
	if cfg.API.Middleware.RateLimit && cfg.API.Middleware.RateLimitRPS > 0 {
		rps = float64(cfg.API.Middleware.RateLimitRPS)
	}
	router := apihttp.NewRouter(handler, mw, apihttp.RouterOptions{
		CORS:         cfg.API.CORS.Enable,
		RateLimitRPS: rps,
	})

	if cfg.API.Middleware.Auth && cfg.API.Middleware.JWTKey != "" {
		timeout := parseDuration(cfg.API.Middleware.JWTTimeout, time.Hour)
		maxRefresh := parseDuration(cfg.API.Middleware.JWTMaxRefresh, time.Hour)
		jwtAuth, err := middleware.NewJWTAuth(
			[]byte(cfg.API.Middleware.JWTKey),
			timeout, maxRefresh,
			cfg.API.Middleware.AuthUser, cfg.API.Middleware.AuthPassword,
		)
		if err != nil {
			logger.Warn("JWT 初始化失败，将跳过认证", "error", err)
		} else {
			router.SetJWT(jwtAuth)
			logger.Info("JWT 认证已启用")
		}
	}

	return &App{
		config:  cfg,
		logger:  logger,
		router:  router,
		streams: streams,
	}, nil
}

// resolveAPIKey 解析上游 API Key，secret: 引用经 secrets store 解出
func resolveAPIKey(cfg *config.Config) (string, error) {
	key := cfg.Upstream.APIKey
	if !strings.HasPrefix(key, secretRefPrefix) {
		return key, nil
	}
	store, err := secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Config:   cfg.Secrets.Config,
	})
	if err != nil {
		return "", fmt.Errorf("初始化 secrets store 失败: %w", err)
	}
	value, err := store.Get(context.Background(), strings.TrimPrefix(key, secretRefPrefix))
	if err != nil {
		return "", fmt.Errorf("解析上游 API Key 失败: %w", err)
	}
	return value, nil
}

// Run 启动 HTTP 服务，addr 如 ":8080"
func (a *App) Run(addr string) error {
	a.logger.Info("网关服务启动", "addr", addr)

	// 使用 Hertz slog 扩展，与进程日志配置对齐
	output := os.Stdout
	if a.config.Log.File != "" {
		f, err := os.OpenFile(a.config.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		output = f
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(log.ParseLevel(a.config.Log.Level))
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	))

	// 可选：启用链路追踪（OpenTelemetry）
	tc := a.config.Monitoring.Tracing
	if tc.Enable {
		serviceName := tc.ServiceName
		if serviceName == "" {
			serviceName = "fastgpt-gateway"
		}
		exportEndpoint := tc.ExportEndpoint
		if exportEndpoint == "" {
			exportEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		}
		if exportEndpoint != "" {
			if tc.ExportProtocol == "http" {
				// collector 只开放 OTLP/HTTP（4318）时走自建 exporter
				tp, err := tracing.InitTracer(tracing.OTelConfig{
					ServiceName:    serviceName,
					ExportEndpoint: exportEndpoint,
					Insecure:       tc.Insecure,
				})
				if err != nil {
					return fmt.Errorf("初始化链路追踪失败: %w", err)
				}
				a.otelProvider = tp
			} else {
				opts := []provider.Option{
					provider.WithServiceName(serviceName),
					provider.WithExportEndpoint(exportEndpoint),
				}
				if tc.Insecure {
					opts = append(opts, provider.WithInsecure())
				}
				a.otelProvider = provider.NewOpenTelemetryProvider(opts...)
			}
			tracerOpt, cfg := hertztracing.NewServerTracer()
			a.hertz = a.router.Build(addr, tracerOpt)
			a.hertz.Use(hertztracing.ServerMiddleware(cfg))
			a.logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", exportEndpoint)
		} else {
			a.hertz = a.router.Build(addr)
		}
	} else {
		a.hertz = a.router.Build(addr)
	}

	return a.hertz.Run()
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.streams != nil {
		if err := a.streams.Close(); err != nil {
			return err
		}
	}
	return nil
}

// parseDuration 解析时长字符串，无效或空时返回 defaultVal
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}
