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

// Package http 网关的 HTTP 层：对话流式透传、活跃流查询、健康检查与指标
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/http1/resp"
	"github.com/google/uuid"

	"fastgpt-gateway/internal/normalizer"
	"fastgpt-gateway/internal/storage/streamstate"
	"fastgpt-gateway/internal/upstream/fastgpt"
	"fastgpt-gateway/pkg/log"
	"fastgpt-gateway/pkg/metrics"
	"fastgpt-gateway/pkg/tracing"
)

// Upstream 上游对话流接口
type Upstream interface {
	ChatStream(ctx context.Context, req fastgpt.ChatRequest, handler fastgpt.EventHandler) error
}

// Handler HTTP 处理器
type Handler struct {
	logger   *log.Logger
	upstream Upstream
	streams  streamstate.Store
}

// NewHandler 创建 HTTP 处理器
func NewHandler(logger *log.Logger, upstream Upstream, streams streamstate.Store) *Handler {
	return &Handler{
		logger:   logger,
		upstream: upstream,
		streams:  streams,
	}
}

// chatRequest 浏览器发来的对话请求
type chatRequest struct {
	ChatID    string                 `json:"chatId"`
	Messages  []fastgpt.ChatMessage  `json:"messages"`
	Variables map[string]interface{} `json:"variables"`
}

// ChatStream 打开一条上游流并将归一化后的事件以 SSE 透出给浏览器。
// 回答增量帧（answer/fastAnswer）原样透传，其余帧经归一化后
// 以 event: <type> / data: <Event JSON> 的形式逐条下发
func (h *Handler) ChatStream(ctx context.Context, c *app.RequestContext) {
	var req chatRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体解析失败"})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(consts.StatusBadRequest, map[string]string{"error": "messages 不能为空"})
		return
	}

	streamID := uuid.NewString()
	ctx, span := tracing.StartStreamSpan(ctx, streamID, req.ChatID)
	defer span.End()

	_ = h.streams.Touch(ctx, streamstate.Info{
		ID:         streamID,
		ChatID:     req.ChatID,
		RemoteAddr: c.ClientIP(),
		StartedAt:  time.Now(),
	})
	defer h.streams.Remove(context.WithoutCancel(ctx), streamID)

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()
	start := time.Now()
	defer func() { metrics.UpstreamStreamDuration.Observe(time.Since(start).Seconds()) }()

	c.SetStatusCode(consts.StatusOK)
	c.Response.Header.Set("Content-Type", "text/event-stream; charset=utf-8")
	c.Response.Header.Set("Cache-Control", "no-cache")
	c.Response.Header.Set("X-Stream-Id", streamID)
	c.Response.HijackWriter(resp.NewChunkedBodyWriter(&c.Response, c.GetWriter()))

	stream := normalizer.NewStream()
	defer stream.Close()

	w := sseWriter{c: c}
	err := h.upstream.ChatStream(ctx, fastgpt.ChatRequest{
		ChatID:    req.ChatID,
		Messages:  req.Messages,
		Variables: req.Variables,
	}, func(raw fastgpt.RawEvent) error {
		return h.relayEvent(w, stream, raw)
	})
	if err != nil {
		h.logger.Error("上游流中断", "stream_id", streamID, "error", err)
		w.WriteEvent("error", []byte(`{"error":"上游流中断"}`))
	}

	w.WriteEvent("", []byte("[DONE]"))
}

// eventWriter 下行 SSE 记录的写出口
type eventWriter interface {
	WriteEvent(event string, data []byte) error
}

// sseWriter 把记录写进 Hertz 的分块响应体并逐条冲刷
type sseWriter struct {
	c *app.RequestContext
}

func (w sseWriter) WriteEvent(event string, data []byte) error {
	var buf bytes.Buffer
	if event != "" {
		fmt.Fprintf(&buf, "event: %s\n", event)
	}
	fmt.Fprintf(&buf, "data: %s\n\n", data)
	if _, err := w.c.Write(buf.Bytes()); err != nil {
		return err
	}
	return w.c.Flush()
}

// relayEvent 将一帧上游事件转换为零或一条下行 SSE 记录
func (h *Handler) relayEvent(w eventWriter, stream *normalizer.Stream, raw fastgpt.RawEvent) error {
	key := normalizer.Canonicalize(raw.Event)
	if key == "answer" || key == "fastanswer" {
		data, err := json.Marshal(raw.Data)
		if err != nil {
			metrics.EventDroppedTotal.WithLabelValues("encode_error").Inc()
			return nil
		}
		return w.WriteEvent(raw.Event, data)
	}

	event := stream.Normalize(raw.Event, raw.Data)
	if event == nil {
		metrics.EventDroppedTotal.WithLabelValues("filtered").Inc()
		return nil
	}
	metrics.EventTotal.WithLabelValues(event.Type, string(event.Level)).Inc()
	if event.Type == normalizer.EventTypeComplete {
		metrics.ToolCallTotal.WithLabelValues(string(event.Level)).Inc()
	}

	data, err := json.Marshal(event)
	if err != nil {
		metrics.EventDroppedTotal.WithLabelValues("encode_error").Inc()
		return nil
	}
	return w.WriteEvent(event.Type, data)
}

// ListStreams 返回当前活跃流列表
func (h *Handler) ListStreams(ctx context.Context, c *app.RequestContext) {
	infos, err := h.streams.List(ctx)
	if err != nil {
		h.logger.Error("查询活跃流失败", "error", err)
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "查询活跃流失败"})
		return
	}
	c.JSON(consts.StatusOK, map[string]interface{}{
		"total":   len(infos),
		"streams": infos,
	})
}

// Health 健康检查
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// Metrics Prometheus 指标暴露
func (h *Handler) Metrics(ctx context.Context, c *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		c.JSON(consts.StatusInternalServerError, map[string]string{"error": "导出指标失败"})
		return
	}
	c.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}
