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

// Package normalizer 将 FastGPT 及同类编排后端的流式事件词表归一为
// 一小组稳定的 UI 通知记录。纯同步转换：不阻塞、不抛错、不重排。
package normalizer

import (
	"strconv"
	"time"
)

// Level 事件级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// 工具生命周期事件的 type 标记；其余事件 type 为规范 key。
const (
	EventTypeStart    = "start"
	EventTypeComplete = "complete"
	EventTypeTool     = "tool"
)

// Event UI 消费的归一化事件。Timestamp 为毫秒时间戳的十进制字符串。
type Event struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Level     Level  `json:"level"`
	Summary   string `json:"summary,omitempty"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

// Stream 一次流式会话的归一化上下文，持有该流内全部工具调用状态。
// 由调用方在流开始时创建、结束时 Close，工具状态随流释放，互不串扰。
// 同一 Stream 的事件必须按传输顺序在单个 goroutine 内送入。
type Stream struct {
	tools map[string]*ToolEventState
}

// NewStream 创建流上下文
func NewStream() *Stream {
	return &Stream{tools: make(map[string]*ToolEventState)}
}

// Close 释放流内全部工具状态。之后再调用 Normalize 不会出错，
// 只会从空状态重新累积。
func (s *Stream) Close() {
	s.tools = nil
}

// getOrCreate 按 tool id 取状态，不存在则建。
func (s *Stream) getOrCreate(id string) *ToolEventState {
	if s.tools == nil {
		s.tools = make(map[string]*ToolEventState)
	}
	st, ok := s.tools[id]
	if !ok {
		st = &ToolEventState{ID: id}
		s.tools[id] = st
	}
	return st
}

// Normalize 归一化一条原始事件，不可透出时返回 nil，从不失败。
//
// 判定顺序固定：工具对象 → 忽略表/思考/增量判定 → 种类元数据 →
// 兜底摘要；既无元数据也提不出摘要的未知事件静默丢弃。
func (s *Stream) Normalize(eventName string, payload any) *Event {
	if eventName == "" {
		return nil
	}
	key := Canonicalize(eventName)

	// 工具流优先于一切，包括忽略表
	if tool, ok := toolObject(payload); ok {
		return s.normalizeTool(key, tool, payload)
	}

	if isIgnoredKey(key) || IsReasoningEvent(eventName) || IsChunkLikeEvent(eventName) {
		return nil
	}

	meta, known := metadataFor(kindOf(key))

	var summary string
	if known && meta.summarize != nil {
		summary = meta.summarize(payload)
	} else {
		summary = fallbackSummary(payload)
	}

	if !known && summary == "" {
		return nil
	}

	label := meta.label
	level := meta.level
	if !known {
		label = "事件：" + eventName
		level = LevelInfo
	}

	return &Event{
		Type:      key,
		Label:     label,
		Level:     level,
		Summary:   summary,
		Payload:   payload,
		Timestamp: timestamp(),
	}
}

func timestamp() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}
