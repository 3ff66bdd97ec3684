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

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置结构体
type Config struct {
	API         APIConfig         `mapstructure:"api"`
	Upstream    UpstreamConfig    `mapstructure:"upstream"`
	StreamState StreamStateConfig `mapstructure:"stream_state"`
	Secrets     SecretsConfig     `mapstructure:"secrets"`
	Log         LogConfig         `mapstructure:"log"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port       int              `mapstructure:"port"`
	Host       string           `mapstructure:"host"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	Auth          bool   `mapstructure:"auth"`
	RateLimit     bool   `mapstructure:"rate_limit"`
	RateLimitRPS  int    `mapstructure:"rate_limit_rps"`
	JWTKey        string `mapstructure:"jwt_key"`
	JWTTimeout    string `mapstructure:"jwt_timeout"`     // 如 "1h"
	JWTMaxRefresh string `mapstructure:"jwt_max_refresh"` // 如 "1h"
	AuthUser      string `mapstructure:"auth_user"`
	AuthPassword  string `mapstructure:"auth_password"`
}

// UpstreamConfig FastGPT 后端配置
type UpstreamConfig struct {
	BaseURL string               `mapstructure:"base_url"`
	APIKey  string               `mapstructure:"api_key"` // 形如 ${FASTGPT_API_KEY} 或 secret:fastgpt_api_key
	AppID   string               `mapstructure:"app_id"`
	Timeout string               `mapstructure:"timeout"` // 连接/首包超时，如 "30s"
	Limits  UpstreamLimitsConfig `mapstructure:"limits"`
}

// UpstreamLimitsConfig 上游流打开的限流配置
type UpstreamLimitsConfig struct {
	StreamsPerSecond float64 `mapstructure:"streams_per_second"`
	MaxConcurrent    int     `mapstructure:"max_concurrent"`
	Burst            int     `mapstructure:"burst"`
}

// StreamStateConfig 活跃流注册表配置
type StreamStateConfig struct {
	Type     string `mapstructure:"type"` // memory | redis
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
	TTL      string `mapstructure:"ttl"` // 如 "10m"
}

// SecretsConfig Secret 提供方配置
type SecretsConfig struct {
	Provider string            `mapstructure:"provider"` // env | memory | vault
	Config   map[string]string `mapstructure:"config"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	ExportProtocol string `mapstructure:"export_protocol"` // grpc | http
	Insecure       bool   `mapstructure:"insecure"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	replaceEnvVars(&config)
	return &config, nil
}

// LoadGatewayConfig 加载网关配置（configs/gateway.yaml）
func LoadGatewayConfig() (*Config, error) {
	return LoadConfig("configs/gateway.yaml")
}

// replaceEnvVars 将 ${VAR} 形式的配置值替换为环境变量
func replaceEnvVars(config *Config) {
	config.Upstream.APIKey = expandEnv(config.Upstream.APIKey)
	config.API.Middleware.JWTKey = expandEnv(config.API.Middleware.JWTKey)
	config.API.Middleware.AuthPassword = expandEnv(config.API.Middleware.AuthPassword)
	config.StreamState.Password = expandEnv(config.StreamState.Password)
}

func expandEnv(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		if val := os.Getenv(strings.TrimSuffix(strings.TrimPrefix(v, "${"), "}")); val != "" {
			return val
		}
	}
	return v
}
