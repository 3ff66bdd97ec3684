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

package http

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/hertz-contrib/jwt"

	"fastgpt-gateway/internal/api/http/middleware"
)

// RouterOptions 路由装配选项
type RouterOptions struct {
	CORS         bool
	RateLimitRPS float64
}

// Router HTTP 路由器
type Router struct {
	handler    *Handler
	middleware *middleware.Middleware
	jwtAuth    *jwt.HertzJWTMiddleware
	opts       RouterOptions
}

// NewRouter 创建路由器
func NewRouter(handler *Handler, mw *middleware.Middleware, opts RouterOptions) *Router {
	return &Router{
		handler:    handler,
		middleware: mw,
		opts:       opts,
	}
}

// SetJWT 启用 JWT 认证，保护 /v1 下除 login 外的全部路由
func (r *Router) SetJWT(jwtAuth *jwt.HertzJWTMiddleware) {
	r.jwtAuth = jwtAuth
}

// Build 创建 Hertz server 并注册路由
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	opts = append(opts, server.WithHostPorts(addr))
	h := server.Default(opts...)

	h.Use(r.middleware.AccessLog())
	if r.opts.CORS {
		h.Use(r.middleware.CORS())
	}
	if r.opts.RateLimitRPS > 0 {
		h.Use(r.middleware.RateLimit(r.opts.RateLimitRPS))
	}

	h.GET("/healthz", r.handler.Health)
	h.GET("/metrics", r.handler.Metrics)

	v1 := h.Group("/v1")
	if r.jwtAuth != nil {
		v1.POST("/login", r.jwtAuth.LoginHandler)
		v1.Use(r.jwtAuth.MiddlewareFunc())
	}
	v1.POST("/chat/completions", r.handler.ChatStream)
	v1.GET("/streams", r.handler.ListStreams)

	return h
}
