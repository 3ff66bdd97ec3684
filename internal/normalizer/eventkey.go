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

import "strings"

// Canonicalize 将后端事件名折叠为规范 key：小写并去掉 `_ - . :` 与空格。
// 不同后端版本的 "toolCall" / "tool_call" / "TOOL-CALL" 折叠为同一个 key。
func Canonicalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == '_' || r == '-' || r == '.' || r == ':' || r == ' ':
			// 分隔符不参与匹配
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsReasoningEvent 判断事件是否为模型"思考"类事件，此类事件不向 UI 透出。
func IsReasoningEvent(name string) bool {
	key := Canonicalize(name)
	return strings.Contains(key, "reasoning") ||
		strings.Contains(key, "thinking") ||
		strings.Contains(key, "thought")
}

// IsChunkLikeEvent 判断事件是否为原始 token 增量类事件（chunk/delta），同样静默。
func IsChunkLikeEvent(name string) bool {
	key := Canonicalize(name)
	return strings.Contains(key, "chunk") || strings.Contains(key, "delta")
}
