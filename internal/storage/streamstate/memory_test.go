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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastgpt-gateway/pkg/config"
)

func TestMemoryStoreTouchAndList(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Touch(ctx, Info{ID: "s1", ChatID: "c1"}))
	require.NoError(t, store.Touch(ctx, Info{ID: "s2", ChatID: "c2"}))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestMemoryStoreTouchUpdatesExisting(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Touch(ctx, Info{ID: "s1", ChatID: "c1"}))
	require.NoError(t, store.Touch(ctx, Info{ID: "s1", ChatID: "c2"}))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "c2", infos[0].ChatID)
}

func TestMemoryStoreRemove(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Touch(ctx, Info{ID: "s1"}))
	require.NoError(t, store.Remove(ctx, "s1"))
	require.NoError(t, store.Remove(ctx, "missing"))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Touch(ctx, Info{ID: "s1"}))

	time.Sleep(30 * time.Millisecond)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestMemoryStoreTouchAfterClose(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	require.NoError(t, store.Close())

	require.NoError(t, store.Touch(context.Background(), Info{ID: "s1"}))
}

func TestNewStoreDispatch(t *testing.T) {
	store, err := NewStore(config.StreamStateConfig{Type: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	store.Close()

	store, err = NewStore(config.StreamStateConfig{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	store.Close()

	_, err = NewStore(config.StreamStateConfig{Type: "etcd"})
	assert.Error(t, err)

	_, err = NewStore(config.StreamStateConfig{Type: "memory", TTL: "not-a-duration"})
	assert.Error(t, err)
}
