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

// Package fastgpt 封装对 FastGPT 编排后端的流式调用，
// 将上游 SSE 帧逐条解码后交给调用方处理
package fastgpt

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"fastgpt-gateway/pkg/errors"
	"fastgpt-gateway/pkg/tracing"
)

// doneMarker 上游用于标记流结束的哨兵数据帧
const doneMarker = "[DONE]"

// RawEvent 上游 SSE 流中的一帧，Data 为 JSON 解码后的载荷；
// 解码失败时 Data 保留原始字符串
type RawEvent struct {
	Event string
	Data  any
}

// EventHandler 每收到一帧上游事件调用一次，返回错误时中断流
type EventHandler func(ev RawEvent) error

// ChatRequest 透传给上游的对话请求
type ChatRequest struct {
	ChatID    string         `json:"chatId,omitempty"`
	Messages  []ChatMessage  `json:"messages"`
	Variables map[string]any `json:"variables,omitempty"`
	Detail    bool           `json:"detail"`
	Stream    bool           `json:"stream"`
}

// ChatMessage 对话消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client FastGPT 上游客户端
type Client struct {
	baseURL string
	apiKey  string
	client  *resty.Client
	limiter *StreamLimiter
}

// NewClient 创建上游客户端
func NewClient(baseURL, apiKey string, timeout time.Duration, limiter *StreamLimiter) *Client {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		limiter: limiter,
	}
}

// ChatStream 向上游发起流式对话，逐帧回调 handler 直到流结束。
// 上游返回非 200、连接中断或 handler 返回错误都会中断并返回
func (c *Client) ChatStream(ctx context.Context, req ChatRequest, handler EventHandler) error {
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return err
		}
		defer c.limiter.Release()
	}

	req.Stream = true
	req.Detail = true

	ctx, span := tracing.StartUpstreamSpan(ctx, c.baseURL)
	defer span.End()

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(c.baseURL + "/api/v1/chat/completions")
	if err != nil {
		return errors.Wrap(errors.ErrUpstream, fmt.Sprintf("调用上游失败: %v", err))
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return errors.Wrap(errors.ErrUpstream, fmt.Sprintf("上游返回状态码 %d", resp.StatusCode()))
	}

	return ParseSSE(ctx, body, handler)
}

// ParseSSE 按 SSE 帧格式逐行解析一条事件流，每帧回调一次 handler。
// 读到 [DONE] 或流结束时返回
func ParseSSE(ctx context.Context, r io.Reader, handler EventHandler) error {
	scanner := bufio.NewScanner(r)
	// 上游单帧可能携带较大的响应载荷
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		switch {
		case line == "":
			if data == doneMarker {
				return nil
			}
			if data != "" {
				if err := handler(decodeEvent(event, data)); err != nil {
					return err
				}
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			chunk := strings.TrimPrefix(line, "data:")
			chunk = strings.TrimPrefix(chunk, " ")
			if data != "" {
				data += "\n"
			}
			data += chunk
		}
		// 其余字段（id、retry、注释行）忽略
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(errors.ErrUpstream, fmt.Sprintf("读取上游流失败: %v", err))
	}
	// 上游未发送 [DONE] 直接断开也视为正常结束
	if data != "" && data != doneMarker {
		return handler(decodeEvent(event, data))
	}
	return nil
}

// decodeEvent 将 data 解析为 JSON，失败时保留原始字符串
func decodeEvent(event, data string) RawEvent {
	var payload any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		payload = data
	}
	return RawEvent{Event: event, Data: payload}
}
