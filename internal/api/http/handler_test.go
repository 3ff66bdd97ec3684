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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastgpt-gateway/internal/normalizer"
	"fastgpt-gateway/internal/storage/streamstate"
	"fastgpt-gateway/internal/upstream/fastgpt"
	"fastgpt-gateway/pkg/log"
)

// recordWriter 把下行记录收集到内存里
type recordWriter struct {
	records []string
}

func (w *recordWriter) WriteEvent(event string, data []byte) error {
	w.records = append(w.records, fmt.Sprintf("%s|%s", event, data))
	return nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store := streamstate.NewMemoryStore(time.Minute)
	t.Cleanup(func() { store.Close() })
	return NewHandler(log.Discard(), nil, store)
}

func TestRelayEventPassesAnswerThrough(t *testing.T) {
	h := newTestHandler(t)
	stream := normalizer.NewStream()
	defer stream.Close()

	w := &recordWriter{}
	err := h.relayEvent(w, stream, fastgpt.RawEvent{
		Event: "answer",
		Data:  map[string]any{"choices": []any{map[string]any{"delta": map[string]any{"content": "你好"}}}},
	})
	require.NoError(t, err)
	require.Len(t, w.records, 1)
	assert.True(t, strings.HasPrefix(w.records[0], "answer|"))
	assert.Contains(t, w.records[0], "你好")
}

func TestRelayEventDropsFilteredFrames(t *testing.T) {
	h := newTestHandler(t)
	stream := normalizer.NewStream()
	defer stream.Close()

	w := &recordWriter{}
	for _, name := range []string{"chunk", "flowNodeStatus", "ping", "reasoning"} {
		require.NoError(t, h.relayEvent(w, stream, fastgpt.RawEvent{Event: name, Data: map[string]any{}}))
	}
	assert.Empty(t, w.records)
}

func TestRelayEventEmitsNormalizedEvent(t *testing.T) {
	h := newTestHandler(t)
	stream := normalizer.NewStream()
	defer stream.Close()

	w := &recordWriter{}
	err := h.relayEvent(w, stream, fastgpt.RawEvent{
		Event: "flowStart",
		Data:  map[string]any{},
	})
	require.NoError(t, err)
	require.Len(t, w.records, 1)

	parts := strings.SplitN(w.records[0], "|", 2)
	var event normalizer.Event
	require.NoError(t, json.Unmarshal([]byte(parts[1]), &event))
	assert.Equal(t, "开始处理", event.Label)
	assert.Equal(t, normalizer.LevelInfo, event.Level)
	assert.Equal(t, event.Type, parts[0])
}

func TestRelayEventToolLifecycle(t *testing.T) {
	h := newTestHandler(t)
	stream := normalizer.NewStream()
	defer stream.Close()

	w := &recordWriter{}
	require.NoError(t, h.relayEvent(w, stream, fastgpt.RawEvent{
		Event: "toolCall",
		Data: map[string]any{
			"tool": map[string]any{"id": "t1", "toolName": "知识库搜索", "params": `{"query":"天气"}`},
		},
	}))
	require.NoError(t, h.relayEvent(w, stream, fastgpt.RawEvent{
		Event: "toolResponse",
		Data: map[string]any{
			"tool": map[string]any{"id": "t1", "response": `{"result":"晴"}`},
		},
	}))

	require.Len(t, w.records, 2)
	assert.True(t, strings.HasPrefix(w.records[0], "start|"))
	assert.True(t, strings.HasPrefix(w.records[1], "complete|"))
	assert.Contains(t, w.records[0], "天气")
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t)
	h := server.Default(server.WithHostPorts(":0"))
	h.GET("/healthz", handler.Health)

	w := ut.PerformRequest(h.Engine, "GET", "/healthz", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	resp := w.Result()
	assert.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "ok")
}

func TestListStreams(t *testing.T) {
	store := streamstate.NewMemoryStore(time.Minute)
	defer store.Close()
	require.NoError(t, store.Touch(context.Background(), streamstate.Info{ID: "s1", ChatID: "c1"}))

	handler := NewHandler(log.Discard(), nil, store)
	h := server.Default(server.WithHostPorts(":0"))
	h.GET("/v1/streams", handler.ListStreams)

	w := ut.PerformRequest(h.Engine, "GET", "/v1/streams", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())

	var body struct {
		Total   int                `json:"total"`
		Streams []streamstate.Info `json:"streams"`
	}
	require.NoError(t, json.Unmarshal(resp.Body(), &body))
	assert.Equal(t, 1, body.Total)
	require.Len(t, body.Streams, 1)
	assert.Equal(t, "c1", body.Streams[0].ChatID)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(t)
	h := server.Default(server.WithHostPorts(":0"))
	h.GET("/metrics", handler.Metrics)

	w := ut.PerformRequest(h.Engine, "GET", "/metrics", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	resp := w.Result()
	require.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "fastgpt_gateway_active_streams")
}

func TestChatStreamRejectsEmptyMessages(t *testing.T) {
	handler := newTestHandler(t)
	h := server.Default(server.WithHostPorts(":0"))
	h.POST("/v1/chat/completions", handler.ChatStream)

	body := []byte(`{"chatId":"c1","messages":[]}`)
	w := ut.PerformRequest(h.Engine, "POST", "/v1/chat/completions",
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	resp := w.Result()
	assert.Equal(t, 400, resp.StatusCode())
}
