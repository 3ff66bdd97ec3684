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

// Package streamstate 活跃流注册表：记录网关上正在进行的对话流元数据
package streamstate

import (
	"context"
	"time"
)

// Info 一条活跃流的元数据。只记录元数据，事件历史不落存储。
type Info struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId,omitempty"`
	RemoteAddr string    `json:"remoteAddr,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
}

// Store 活跃流注册表。条目带 TTL，流异常中断时由过期兜底清理。
type Store interface {
	// Touch 登记或续期一条流
	Touch(ctx context.Context, info Info) error
	// Remove 流正常结束时移除
	Remove(ctx context.Context, id string) error
	// List 列出当前活跃流
	List(ctx context.Context) ([]Info, error)
	// Close 关闭底层连接
	Close() error
}
