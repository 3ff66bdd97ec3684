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

package streamstate

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	info      Info
	expiresAt time.Time
}

// MemoryStore 基于进程内存的活跃流注册表，过期条目在读写时惰性清理
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemoryStore 创建内存注册表
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

// Touch 登记或续期一条活跃流
func (s *MemoryStore) Touch(ctx context.Context, info Info) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]memoryEntry)
	}
	s.purgeLocked(now)
	s.entries[info.ID] = memoryEntry{info: info, expiresAt: now.Add(s.ttl)}
	return nil
}

// Remove 注销一条流，不存在时静默返回
func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// List 返回当前未过期的全部活跃流
func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(now)
	infos := make([]Info, 0, len(s.entries))
	for _, e := range s.entries {
		infos = append(infos, e.info)
	}
	return infos, nil
}

// Close 释放注册表
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	return nil
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
