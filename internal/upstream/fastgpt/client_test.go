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

package fastgpt

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastgpt-gateway/pkg/errors"
)

func sseServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}))
}

func TestChatStreamDeliversEvents(t *testing.T) {
	srv := sseServer(t, []string{
		"event: flowNodeStatus\ndata: {\"status\":\"running\",\"name\":\"AI 对话\"}\n\n",
		"event: answer\ndata: {\"choices\":[{\"delta\":{\"content\":\"你好\"}}]}\n\n",
		"data: [DONE]\n\n",
	})
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, nil)

	var events []RawEvent
	err := client.ChatStream(context.Background(), ChatRequest{
		Messages: []ChatMessage{{Role: "user", Content: "你好"}},
	}, func(ev RawEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "flowNodeStatus", events[0].Event)
	payload, ok := events[0].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "running", payload["status"])

	assert.Equal(t, "answer", events[1].Event)
}

func TestChatStreamNonJSONDataKeptAsString(t *testing.T) {
	srv := sseServer(t, []string{
		"event: answer\ndata: plain text\n\n",
		"data: [DONE]\n\n",
	})
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, nil)

	var events []RawEvent
	err := client.ChatStream(context.Background(), ChatRequest{}, func(ev RawEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "plain text", events[0].Data)
}

func TestChatStreamMultiLineData(t *testing.T) {
	srv := sseServer(t, []string{
		"event: answer\ndata: {\"text\":\ndata: \"hi\"}\n\n",
		"data: [DONE]\n\n",
	})
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, nil)

	var events []RawEvent
	err := client.ChatStream(context.Background(), ChatRequest{}, func(ev RawEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	payload, ok := events[0].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi", payload["text"])
}

func TestChatStreamEndsWithoutDoneMarker(t *testing.T) {
	srv := sseServer(t, []string{
		"event: answer\ndata: {\"a\":1}\n\n",
	})
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, nil)

	count := 0
	err := client.ChatStream(context.Background(), ChatRequest{}, func(ev RawEvent) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChatStreamUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, nil)

	err := client.ChatStream(context.Background(), ChatRequest{}, func(ev RawEvent) error {
		t.Fatal("不应收到事件")
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstream))
}

func TestChatStreamHandlerErrorStopsStream(t *testing.T) {
	srv := sseServer(t, []string{
		"event: a\ndata: {}\n\n",
		"event: b\ndata: {}\n\n",
		"data: [DONE]\n\n",
	})
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", 5*time.Second, nil)

	count := 0
	err := client.ChatStream(context.Background(), ChatRequest{}, func(ev RawEvent) error {
		count++
		return fmt.Errorf("停止")
	})
	require.Error(t, err)
	assert.Equal(t, 1, count)
}

func TestStreamLimiterConcurrency(t *testing.T) {
	limiter := NewStreamLimiter(0, 0, 1)

	require.NoError(t, limiter.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := limiter.Acquire(ctx)
	require.Error(t, err)

	limiter.Release()
	require.NoError(t, limiter.Acquire(context.Background()))
	limiter.Release()
	// 多余的 Release 不应 panic
	limiter.Release()
}
