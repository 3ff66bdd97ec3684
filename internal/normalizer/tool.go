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

package normalizer

// toolObject 从 payload 中取出带字符串 id 的 tool 对象。
func toolObject(payload any) (map[string]any, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	tool, ok := obj["tool"].(map[string]any)
	if !ok {
		return nil, false
	}
	if id, ok := tool["id"].(string); !ok || id == "" {
		return nil, false
	}
	return tool, true
}

// normalizeTool 工具生命周期子机。携带 tool 对象的事件无条件走这里，
// 优先级高于忽略表与元数据表。
func (s *Stream) normalizeTool(key string, tool map[string]any, payload any) *Event {
	id, _ := tool["id"].(string)
	st := s.getOrCreate(id)

	if name, ok := tool["toolName"].(string); ok && name != "" {
		st.ToolName = name
	}
	if name, ok := tool["functionName"].(string); ok && name != "" {
		st.FunctionName = name
	}
	fragment, _ := tool["params"].(string)

	switch toolBucketOf(key) {
	case bucketStart:
		st.appendParams(fragment)
		params := summarizeParams(st)
		summary := "工具调用中"
		if params.Summary != "" {
			summary = "调用中 · " + params.Summary
		}
		return s.toolEvent(EventTypeStart, st, LevelInfo, summary, map[string]any{
			"tool":   tool,
			"params": params,
		})

	case bucketUpdate:
		st.appendParams(fragment)
		params := summarizeParams(st)
		// UI 按 tool id 合并同一调用的多行
		return s.toolEvent(EventTypeTool, st, LevelInfo, params.Summary, map[string]any{
			"tool":   tool,
			"params": params,
		})

	case bucketComplete:
		raw := tool["response"]
		if raw == nil {
			if obj, ok := payload.(map[string]any); ok {
				raw = obj["response"]
			}
		}
		info := analyzeResponse(raw)
		level := LevelSuccess
		if info.IsError {
			level = LevelError
		}
		out := map[string]any{
			"tool":     tool,
			"params":   summarizeParams(st),
			"response": info,
		}
		// 原始响应为字符串时额外带一段预览，便于 UI 展开排查
		if text, ok := raw.(string); ok {
			out["responsePreview"] = truncate(text, 400)
		}
		return s.toolEvent(EventTypeComplete, st, level, info.Summary, out)

	default:
		params := summarizeParams(st)
		return s.toolEvent(EventTypeTool, st, LevelInfo, params.Summary, map[string]any{
			"tool":   tool,
			"params": params,
		})
	}
}

func (s *Stream) toolEvent(typ string, st *ToolEventState, level Level, summary string, payload any) *Event {
	return &Event{
		Type:      typ,
		Label:     st.Label(),
		Level:     level,
		Summary:   summary,
		Payload:   payload,
		Timestamp: timestamp(),
	}
}
