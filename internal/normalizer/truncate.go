// Copyright 2026 fanjia1024

package normalizer

// ellipsis 截断标记
const ellipsis = "…"

// truncate 按 rune 截断到 max 个字符，超出时追加省略号。
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + ellipsis
}
