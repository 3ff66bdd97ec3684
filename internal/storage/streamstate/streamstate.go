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
	"fmt"
	"time"

	"fastgpt-gateway/pkg/config"
)

// defaultTTL 条目默认存活时间
const defaultTTL = 10 * time.Minute

// NewStore 根据配置创建活跃流注册表
func NewStore(cfg config.StreamStateConfig) (Store, error) {
	ttl := defaultTTL
	if cfg.TTL != "" {
		d, err := time.ParseDuration(cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("stream_state.ttl 无效: %w", err)
		}
		ttl = d
	}
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		return NewRedisStore(cfg.Addr, cfg.Password, cfg.DB, ttl), nil
	default:
		return nil, fmt.Errorf("不支持的 stream_state 类型: %s", cfg.Type)
	}
}
