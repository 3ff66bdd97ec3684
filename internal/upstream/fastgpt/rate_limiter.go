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

	"golang.org/x/time/rate"
)

// StreamLimiter 上游会话维度的限流器，RPS 限速 + 并发控制
type StreamLimiter struct {
	requestLimiter *rate.Limiter
	semaphore      chan struct{}
}

// NewStreamLimiter 创建限流器。streamsPerSecond <= 0 表示不限速，
// maxConcurrent <= 0 表示不限并发
func NewStreamLimiter(streamsPerSecond float64, burst, maxConcurrent int) *StreamLimiter {
	l := &StreamLimiter{}
	if streamsPerSecond > 0 {
		if burst <= 0 {
			burst = 1
		}
		l.requestLimiter = rate.NewLimiter(rate.Limit(streamsPerSecond), burst)
	}
	if maxConcurrent > 0 {
		l.semaphore = make(chan struct{}, maxConcurrent)
	}
	return l
}

// Acquire 等待限流配额并占用一个并发槽位
func (l *StreamLimiter) Acquire(ctx context.Context) error {
	if l.requestLimiter != nil {
		if err := l.requestLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("等待上游限流配额失败: %w", err)
		}
	}
	if l.semaphore != nil {
		select {
		case l.semaphore <- struct{}{}:
		case <-ctx.Done():
			return fmt.Errorf("等待上游并发槽位失败: %w", ctx.Err())
		}
	}
	return nil
}

// Release 释放并发槽位
func (l *StreamLimiter) Release() {
	if l.semaphore != nil {
		select {
		case <-l.semaphore:
		default:
			// semaphore 已空，无需释放
		}
	}
}
