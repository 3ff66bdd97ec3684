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
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix Redis 中活跃流条目的键前缀
const keyPrefix = "fastgpt:stream:"

// RedisStore 基于 Redis 的活跃流注册表，条目依赖键过期自动清理，
// 适合多实例网关共享一份注册表
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 注册表
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// Touch 登记或续期一条活跃流
func (s *RedisStore) Touch(ctx context.Context, info Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("序列化流信息失败: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+info.ID, data, s.ttl).Err()
}

// Remove 注销一条流
func (s *RedisStore) Remove(ctx context.Context, id string) error {
	return s.client.Del(ctx, keyPrefix+id).Err()
}

// List 遍历前缀下的全部条目，已损坏的条目跳过
func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	var infos []Info
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var info Info
		if err := json.Unmarshal(data, &info); err != nil {
			continue
		}
		infos = append(infos, info)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Close 关闭底层连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
