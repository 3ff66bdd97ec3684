// Copyright 2026 fanjia1024

package normalizer

import (
	"encoding/json"
	"strings"
)

// fallbackKeys 兜底摘要的字段候选，按序取第一个非空字符串。
var fallbackKeys = []string{"content", "summary", "text", "message", "result", "detail", "description"}

// fallbackSummary 从任意 payload 中抽取一行可读文本，截断到 120 字符。
// 字符串直接用；对象先扫候选字段，再退化为 JSON 序列化；空对象/空数组
// 视为无内容，返回空串。
func fallbackSummary(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return truncate(strings.TrimSpace(v), 120)
	case map[string]any:
		for _, k := range fallbackKeys {
			if s, ok := v[k].(string); ok && strings.TrimSpace(s) != "" {
				return truncate(strings.TrimSpace(s), 120)
			}
		}
		if len(v) == 0 {
			return ""
		}
		return marshalSummary(v)
	case []any:
		if len(v) == 0 {
			return ""
		}
		return marshalSummary(v)
	default:
		return marshalSummary(v)
	}
}

func marshalSummary(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return truncate(string(b), 120)
}
